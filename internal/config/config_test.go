package config_test

import (
	"testing"
	"time"

	"lager/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("DB_DRIVER", "postgres")
	v.Set("DB_HOST", "db")
	v.Set("DB_PORT", 5432)
	v.Set("DB_NAME", "inventory_db")
	v.Set("DB_USER", "inv")
	v.Set("DB_PASSWORD", "pw")
	v.Set("DB_SSLMODE", "disable")
	v.Set("DB_POOL_MIN", 1)
	v.Set("DB_POOL_MAX", 10)
	v.Set("JWT_SECRET", "secret")
	v.Set("JWT_EXPIRE_HOURS", 24)
	v.Set("ADMIN_PASSWORD", "admin")
	v.Set("AUTH_TRANSPORT", "bearer")
	return v
}

func TestFromViper_Valid(t *testing.T) {
	cfg, err := config.FromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 1, cfg.PoolMin)
	assert.Equal(t, 10, cfg.PoolMax)
	assert.Equal(t, "host=db port=5432 user=inv password=pw dbname=inventory_db sslmode=disable", cfg.DSN())
	assert.False(t, cfg.TLSEnabled())
}

func TestFromViper_MySQLDSN(t *testing.T) {
	v := baseViper()
	v.Set("DB_DRIVER", "MySQL")
	v.Set("DB_PORT", 3306)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, config.DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "inv:pw@tcp(db:3306)/inventory_db?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}

func TestFromViper_ExplicitDSNWins(t *testing.T) {
	v := baseViper()
	v.Set("DATABASE_DSN", "postgres://u:p@h/db")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", cfg.DSN())
}

func TestFromViper_Invalid(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"unknown driver":       func(v *viper.Viper) { v.Set("DB_DRIVER", "oracle") },
		"unknown transport":    func(v *viper.Viper) { v.Set("AUTH_TRANSPORT", "basic") },
		"min above max":        func(v *viper.Viper) { v.Set("DB_POOL_MIN", 11) },
		"zero max":             func(v *viper.Viper) { v.Set("DB_POOL_MAX", 0); v.Set("DB_POOL_MIN", 0) },
		"missing jwt secret":   func(v *viper.Viper) { v.Set("JWT_SECRET", " ") },
		"missing admin":        func(v *viper.Viper) { v.Set("ADMIN_PASSWORD", "") },
		"memory without admin": func(v *viper.Viper) { v.Set("DB_DRIVER", "memory"); v.Set("ADMIN_PASSWORD", "") },
		"zero ttl":             func(v *viper.Viper) { v.Set("JWT_EXPIRE_HOURS", 0) },
		"half tls":             func(v *viper.Viper) { v.Set("TLS_CERT_FILE", "cert.pem") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := baseViper()
			mutate(v)
			_, err := config.FromViper(v)
			assert.Error(t, err)
		})
	}
}

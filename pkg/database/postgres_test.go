package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/obe-attainment-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "obe", Password: "pw", Name: "obe"})
	assert.Equal(t, "host=db port=5432 user=obe password=pw dbname=obe sslmode=disable", dsn)

	dsn = DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "obe", Password: "pw", Name: "obe", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}

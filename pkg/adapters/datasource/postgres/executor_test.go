package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapWithLimit(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		limit    int
		expected string
	}{
		{
			name:     "plain select",
			sql:      "SELECT * FROM orders",
			limit:    100,
			expected: "SELECT * FROM (SELECT * FROM orders) AS _limited LIMIT 100",
		},
		{
			name:     "trailing semicolon stripped",
			sql:      "SELECT count(*) FROM orders;",
			limit:    10,
			expected: "SELECT * FROM (SELECT count(*) FROM orders) AS _limited LIMIT 10",
		},
		{
			name:     "surrounding whitespace",
			sql:      "  SELECT 1  ;  ",
			limit:    5,
			expected: "SELECT * FROM (SELECT 1) AS _limited LIMIT 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, wrapWithLimit(tt.sql, tt.limit))
		})
	}
}

func TestBuildConnectionString(t *testing.T) {
	cfg := &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "quipu",
		Password: "pw",
		Database: "sales",
	}

	got := buildConnectionString(cfg)
	assert.Equal(t, "host=localhost port=5432 user=quipu password=pw dbname=sales sslmode=disable", got)

	cfg.SSLMode = "require"
	assert.Contains(t, buildConnectionString(cfg), "sslmode=require")
}

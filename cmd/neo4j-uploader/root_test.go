package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagRegistration(t *testing.T) {
	f := rootCmd.Flags()

	for name, shorthand := range map[string]string{
		"host":           "",
		"port":           "p",
		"user":           "u",
		"password":       "",
		"database":       "d",
		"file":           "f",
		"no-prior-clear": "",
		"non-encrypted":  "",
	} {
		flag := f.Lookup(name)
		require.NotNil(t, flag, "flag %q not registered", name)
		assert.Equal(t, shorthand, flag.Shorthand, "flag %q", name)
	}

	assert.Equal(t, "7687", f.Lookup("port").DefValue)
	assert.Equal(t, "neo4j", f.Lookup("database").DefValue)
}

func TestNormalizeFlags_PasswordAlias(t *testing.T) {
	assert.Equal(t, pflag.NormalizedName("password"), normalizeFlags(nil, "pw"))
	assert.Equal(t, pflag.NormalizedName("host"), normalizeFlags(nil, "host"))

	// looking up the alias resolves to the password flag
	flag := rootCmd.Flags().Lookup("pw")
	require.NotNil(t, flag)
	assert.Equal(t, "password", flag.Name)
}

func TestValidateRequired(t *testing.T) {
	restore := func(host, user, password, file string) {
		flagHost, flagUser, flagPassword, flagFile = host, user, password, file
	}
	defer restore(flagHost, flagUser, flagPassword, flagFile)

	restore("db.example.com", "neo4j", "secret", "graph.json")
	assert.NoError(t, validateRequired())

	restore("", "neo4j", "", "graph.json")
	err := validateRequired()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--host")
	assert.Contains(t, err.Error(), "--password")
	assert.NotContains(t, err.Error(), "--user")
}

func TestEnvOr(t *testing.T) {
	t.Setenv("NEOUPLOAD_TEST_VAR", "from-env")
	assert.Equal(t, "from-env", envOr("NEOUPLOAD_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", envOr("NEOUPLOAD_TEST_VAR_UNSET", "fallback"))

	t.Setenv("NEOUPLOAD_TEST_INT", "7688")
	assert.Equal(t, 7688, envOrInt("NEOUPLOAD_TEST_INT", 7687))
	assert.Equal(t, 7687, envOrInt("NEOUPLOAD_TEST_INT_UNSET", 7687))

	t.Setenv("NEOUPLOAD_TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7687, envOrInt("NEOUPLOAD_TEST_INT_BAD", 7687))
}

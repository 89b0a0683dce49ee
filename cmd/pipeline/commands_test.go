package main

import (
	"bytes"
	"strings"
	"testing"

	"cherryblossom/internal/platform/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"collect", "transform", "run", "summary", "token"}, names)
}

func TestTokenCmd_MintsAdminToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADMIN_JWT_SECRET", "pipeline-secret")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--subject", "ops", "--ttl", "10m"})
	require.NoError(t, root.Execute())

	claims, err := crypto.ParseToken("pipeline-secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, crypto.RoleAdmin, claims.Role)
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADMIN_JWT_SECRET", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token"})
	assert.ErrorIs(t, root.Execute(), crypto.ErrEmptySecret)
}

func TestCollectCmd_RejectsArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"collect", "2025"})
	assert.Error(t, root.Execute())
}

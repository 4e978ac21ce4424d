package root

import (
	"testing"

	"fjacquet/bank-import/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Owner(t *testing.T) {
	app := &App{config: &config.Config{}}
	app.config.Owner.ID = "from-config"
	assert.Equal(t, "from-config", app.Owner())

	app.OwnerID = "from-flag"
	assert.Equal(t, "from-flag", app.Owner())
}

func TestApp_CloseWithoutContainer(t *testing.T) {
	app := &App{}
	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}

func TestNewCommand_Flags(t *testing.T) {
	app := &App{}
	cmd := NewCommand(app)

	for _, name := range []string{"config", "owner", "db"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--owner", "alice", "--db", "x.db"}))
	assert.Equal(t, "alice", app.OwnerID)
	assert.Equal(t, "x.db", app.Database)
}

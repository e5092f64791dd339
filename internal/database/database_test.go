package database

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/residence-admin-api/internal/models"
)

func TestConnectersRejectEmptyTargets(t *testing.T) {
	_, err := ConnectPostgres("")
	require.EqualError(t, err, "postgres dsn must not be empty")

	_, err = ConnectRedis(context.Background(), "")
	require.EqualError(t, err, "redis url must not be empty")

	_, err = ConnectNATS("", "residence-admin-api")
	require.EqualError(t, err, "nats url must not be empty")
}

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)
	defer client.Close()

	probe := RedisProbe(client)
	require.NoError(t, probe(context.Background()))

	server.Close()
	require.Error(t, probe(context.Background()))
}

func TestConnectRedisUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	addr := server.Addr()
	server.Close()

	_, err = ConnectRedis(context.Background(), "redis://"+addr)
	require.ErrorContains(t, err, "unable to connect to redis")
}

func TestMigrateCreatesActivityLogTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.True(t, db.Migrator().HasTable(&models.ActivityLog{}))
	require.NoError(t, PostgresProbe(db)(context.Background()))
}

package store

import (
	"fmt"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"

	"messenger/chat-service/internal/config"
)

// NewSession connects to the configured keyspace. The keyspace must
// already exist; run EnsureSchema first on a fresh cluster.
func NewSession(cfg config.CassandraConfig) (*gocql.Session, error) {
	cluster := newCluster(cfg)
	cluster.Keyspace = cfg.Keyspace
	return cluster.CreateSession()
}

func newCluster(cfg config.CassandraConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout

	consistency, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
	if err != nil {
		consistency = gocql.Quorum
	}
	cluster.Consistency = consistency

	return cluster
}

// EnsureSchema creates the keyspace, the four data tables, and the
// counters table, and initializes both counter cells. Idempotent.
//
// The table and key shapes are an external contract: backup, seeding,
// and migration tooling read these tables directly.
func EnsureSchema(cfg config.CassandraConfig, logger *logrus.Logger) error {
	cluster := newCluster(cfg)
	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("connect for schema setup: %w", err)
	}
	defer session.Close()

	keyspace := cfg.Keyspace

	if err := session.Query(fmt.Sprintf(`
		CREATE KEYSPACE IF NOT EXISTS %s
		WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}
	`, keyspace)).Exec(); err != nil {
		return fmt.Errorf("create keyspace %s: %w", keyspace, err)
	}

	tables := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.users (
			user_id BIGINT,
			username TEXT,
			created_at TIMESTAMP,
			PRIMARY KEY (user_id)
		)`, keyspace),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.conversations (
			conversation_id BIGINT,
			user1_id BIGINT,
			user2_id BIGINT,
			last_message_at TIMESTAMP,
			last_message_content TEXT,
			PRIMARY KEY (conversation_id)
		)`, keyspace),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.conversations_by_user (
			user_id BIGINT,
			conversation_id BIGINT,
			last_message_at TIMESTAMP,
			user1_id BIGINT,
			user2_id BIGINT,
			last_message_content TEXT,
			PRIMARY KEY (user_id, last_message_at, conversation_id)
		) WITH CLUSTERING ORDER BY (last_message_at DESC, conversation_id ASC)`, keyspace),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.messages_by_conversation (
			conversation_id BIGINT,
			created_at TIMESTAMP,
			message_id BIGINT,
			sender_id BIGINT,
			receiver_id BIGINT,
			content TEXT,
			PRIMARY KEY (conversation_id, created_at, message_id)
		) WITH CLUSTERING ORDER BY (created_at DESC, message_id ASC)`, keyspace),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.counters (
			name TEXT,
			value COUNTER,
			PRIMARY KEY (name)
		)`, keyspace),
	}

	for _, ddl := range tables {
		if err := session.Query(ddl).Exec(); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Zero-increments materialize the counter rows without moving them.
	for _, name := range []string{"conversation_id", "message_id"} {
		q := fmt.Sprintf("UPDATE %s.counters SET value = value + 0 WHERE name = ?", keyspace)
		if err := session.Query(q, name).Exec(); err != nil {
			logger.WithError(err).WithField("counter", name).Warn("Counter initialization failed")
		}
	}

	logger.WithField("keyspace", keyspace).Info("Cassandra schema is ready")
	return nil
}

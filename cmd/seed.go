package cmd

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"messenger/chat-service/internal/config"
	"messenger/chat-service/internal/counter"
	"messenger/chat-service/internal/repository"
	"messenger/chat-service/internal/service"
	"messenger/chat-service/internal/store"
)

var (
	seedUsers         int
	seedConversations int
	seedMaxMessages   int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the keyspace with fixture users, conversations, and messages",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 10, "number of users to create")
	seedCmd.Flags().IntVar(&seedConversations, "conversations", 15, "number of conversations to create")
	seedCmd.Flags().IntVar(&seedMaxMessages, "max-messages", 50, "maximum messages per conversation")
	rootCmd.AddCommand(seedCmd)
}

// runSeed goes through the service layer rather than raw inserts, so
// canonical pair ordering, counter allocation, and the index fan-out
// all hold for the generated data.
func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	if err := store.EnsureSchema(cfg.Cassandra, logger); err != nil {
		return err
	}

	session, err := store.NewSession(cfg.Cassandra)
	if err != nil {
		return err
	}
	defer session.Close()

	repo := repository.NewCassandraRepository(session)
	ids := counter.NewAllocator(repo, logger)
	svc := service.NewMessengerService(repo, ids, logger)

	ctx := context.Background()

	logger.Infof("Creating %d users...", seedUsers)
	for i := 1; i <= seedUsers; i++ {
		if _, err := svc.CreateUser(ctx, int64(i), fmt.Sprintf("user%d", i)); err != nil {
			return err
		}
	}

	logger.Infof("Creating up to %d conversations with messages...", seedConversations)
	pairs := make(map[[2]int64]bool)

	// Every user talks to someone at least once.
	for userID := int64(1); userID <= int64(seedUsers); userID++ {
		other := randomOtherUser(userID, seedUsers)
		addSeedConversation(ctx, svc, logger, pairs, userID, other)
	}

	for len(pairs) < seedConversations {
		a := int64(rand.Intn(seedUsers) + 1)
		b := randomOtherUser(a, seedUsers)
		addSeedConversation(ctx, svc, logger, pairs, a, b)
	}

	logger.Info("Seed data generated")
	return nil
}

func randomOtherUser(userID int64, numUsers int) int64 {
	for {
		other := int64(rand.Intn(numUsers) + 1)
		if other != userID {
			return other
		}
	}
}

func addSeedConversation(ctx context.Context, svc service.MessengerService, logger *logrus.Logger, pairs map[[2]int64]bool, a, b int64) {
	user1, user2 := a, b
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	key := [2]int64{user1, user2}
	if pairs[key] {
		return
	}
	pairs[key] = true

	count := rand.Intn(seedMaxMessages) + 1
	for i := 0; i < count; i++ {
		sender, receiver := a, b
		if rand.Intn(2) == 0 {
			sender, receiver = b, a
		}
		content := fmt.Sprintf("Test message %d from user%d to user%d", i+1, sender, receiver)
		if _, err := svc.SendMessage(ctx, sender, receiver, content); err != nil {
			logger.Warnf("Seed message failed: %v", err)
			return
		}
	}
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/career"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the study assistant a question",
	Long: `Send one message to the study assistant. With --roadmap the answer is
grounded on that stored roadmap, and the conversation history is kept in the
configured store.`,
	Example: `  careernav chat "How should I start learning Kubernetes?"
  careernav chat --user ada --roadmap 3f2c... "What is next this week?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var chatFlags struct {
	user    string
	roadmap string
}

func init() {
	chatCmd.Flags().StringVar(&chatFlags.user, "user", "local", "User ID the conversation belongs to")
	chatCmd.Flags().StringVar(&chatFlags.roadmap, "roadmap", "", "Roadmap ID to ground the conversation on")
}

func runChat(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)
	ctx := cmd.Context()

	message := strings.Join(args, " ")
	resp := container.Service.Chat(ctx, career.ChatRequest{
		UserID:    chatFlags.user,
		RoadmapID: chatFlags.roadmap,
		Message:   message,
	})
	fmt.Println(resp.Reply)

	now := time.Now().UTC()
	err = container.Store.AppendChat(ctx, chatFlags.user, chatFlags.roadmap,
		types.ChatTurn{Role: types.RoleUser, Message: strings.TrimSpace(message), Timestamp: now},
		types.ChatTurn{Role: types.RoleAssistant, Message: resp.Reply, Timestamp: now},
	)
	if err != nil {
		container.Logger.LogError(err, "Failed to save chat turns")
	}
	return nil
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tutorchat/backend/internal/auth"
	"tutorchat/backend/internal/config"
	"tutorchat/backend/internal/ledger"
	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const timeLayout = "2006-01-02 15:04"

var (
	restrictAction       string
	restrictConversation string
	flaggedStatus        string
	flaggedLimit         int
	linkTTL              time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Moderation tools for TutorChat",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// violationsCmd lists every ledger row of a user
var violationsCmd = &cobra.Command{
	Use:   "violations <user-id>",
	Short: "List a user's recorded violations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStorage()
		if err != nil {
			return err
		}

		violations, err := s.GetViolationsForUser(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load violations: %w", err)
		}
		if len(violations) == 0 {
			fmt.Printf("User %s has no violations.\n", args[0])
			return nil
		}

		now := time.Now()
		rows := make([][]string, 0, len(violations))
		for _, v := range violations {
			rows = append(rows, violationRow(v, now))
		}
		fmt.Println(newTable("Created", "Type", "Severity", "Action", "Expires", "Active", "Conversation").Rows(rows...))
		return nil
	},
}

// statusCmd shows whether a user can post right now
var statusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show whether a user is muted or banned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStorage()
		if err != nil {
			return err
		}

		block, err := ledger.NewService(s).IsSenderBlocked(cmd.Context(), args[0], time.Now())
		if err != nil {
			return err
		}
		fmt.Println(describeBlock(args[0], block))
		return nil
	},
}

// restrictCmd appends a manual mute or ban
var restrictCmd = &cobra.Command{
	Use:   "restrict <user-id>",
	Short: "Record a manual mute or ban",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := parseAction(restrictAction)
		if err != nil {
			return err
		}

		s, err := openStorage()
		if err != nil {
			return err
		}

		v, err := ledger.NewService(s).Restrict(cmd.Context(), args[0], restrictConversation, action)
		if err != nil {
			return err
		}
		fmt.Printf("User %s restricted: %s (until %s).\n", args[0], v.Action, formatExpiry(ledger.EffectiveExpiry(*v)))
		return nil
	},
}

// flaggedCmd lists flagged messages for review
var flaggedCmd = &cobra.Command{
	Use:   "flagged",
	Short: "List flagged messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.FlaggedStatus(flaggedStatus)
		if status != "" && status != models.FlaggedBlocked && status != models.FlaggedReview {
			return fmt.Errorf("unknown status %q (want blocked or review)", flaggedStatus)
		}

		s, err := openStorage()
		if err != nil {
			return err
		}

		flagged, err := s.GetFlaggedMessages(cmd.Context(), status, flaggedLimit)
		if err != nil {
			return fmt.Errorf("failed to load flagged messages: %w", err)
		}

		rows := make([][]string, 0, len(flagged))
		for _, f := range flagged {
			rows = append(rows, []string{
				f.CreatedAt.Local().Format(timeLayout), string(f.Status), f.SenderID, f.ConversationID, truncate(f.Content, 60), string(f.Flags),
			})
		}
		fmt.Println(newTable("Created", "Status", "Sender", "Conversation", "Content", "Flags").Rows(rows...))
		fmt.Printf("%d flagged messages\n", len(flagged))
		return nil
	},
}

// linkTokenCmd prints a Telegram deep-link token for a user
var linkTokenCmd = &cobra.Command{
	Use:   "link-token <user-id>",
	Short: "Issue a token that links a Telegram chat to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		token, err := auth.NewTokens(cfg.Auth.JWTSecret).Issue(args[0], auth.PurposeTelegramLink, linkTTL)
		if err != nil {
			return err
		}
		fmt.Printf("/start %s\n", token)
		return nil
	},
}

func init() {
	restrictCmd.Flags().StringVarP(&restrictAction, "action", "a", string(models.ActionMute24h), "mute_24h, mute_7d or ban")
	restrictCmd.Flags().StringVarP(&restrictConversation, "conversation", "c", "", "conversation the restriction relates to")

	flaggedCmd.Flags().StringVarP(&flaggedStatus, "status", "s", "", "blocked or review (default all)")
	flaggedCmd.Flags().IntVarP(&flaggedLimit, "limit", "n", 20, "maximum rows")

	linkTokenCmd.Flags().DurationVar(&linkTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(violationsCmd, statusCmd, restrictCmd, flaggedCmd, linkTokenCmd)
}

// openStorage connects to PostgreSQL only; the CLI needs no Redis.
func openStorage() (*storage.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return storage.NewStorageService(db, nil), nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(headers...)
}

func violationRow(v models.Violation, now time.Time) []string {
	active := "-"
	if v.Action.Restricts() {
		active = strconv.FormatBool(ledger.IsActive(v, now))
	}
	return []string{
		v.CreatedAt.Local().Format(timeLayout),
		v.Type,
		string(v.Severity),
		string(v.Action),
		formatExpiry(ledger.EffectiveExpiry(v)),
		active,
		v.ConversationID,
	}
}

func describeBlock(userID string, b ledger.Block) string {
	switch {
	case !b.Blocked:
		return fmt.Sprintf("User %s may send messages.", userID)
	case b.Reason == ledger.ReasonBan:
		return fmt.Sprintf("User %s is banned.", userID)
	default:
		return fmt.Sprintf("User %s is muted until %s.", userID, formatExpiry(b.Until))
	}
}

func parseAction(raw string) (models.ViolationAction, error) {
	action := models.ViolationAction(strings.ToLower(strings.TrimSpace(raw)))
	if !action.Restricts() {
		return "", fmt.Errorf("unknown action %q (want mute_24h, mute_7d or ban)", raw)
	}
	return action, nil
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(timeLayout)
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

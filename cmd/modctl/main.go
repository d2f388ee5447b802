// modctl is the administrative client for the chat moderation server. It
// talks to the same HTTP endpoints the admin UI uses, so every moderation
// action stays auditable server-side instead of living in ad-hoc console
// helpers.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

func main() {
	root := &cobra.Command{
		Use:   "modctl",
		Short: "Administrative client for the chat moderation server",
	}

	root.PersistentFlags().StringVar(&serverURL, "server", envOr("CHAT_SERVER_URL", "http://localhost:8080"), "server base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("CHAT_ADMIN_TOKEN"), "admin bearer token")

	root.AddCommand(
		banCmd(),
		unbanCmd(),
		bannedCmd(),
		activeCmd(),
		reportsCmd(),
		broadcastCmd(),
		pushCmd(),
		adminCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func banCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "ban <deviceId>",
		Short: "Ban a device from the chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/moderation/ban", map[string]string{
				"deviceId": args[0],
				"reason":   reason,
			})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "ban reason (required)")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func unbanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unban <deviceId>",
		Short: "Lift a device ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/moderation/unban", map[string]string{
				"deviceId": args[0],
			})
		},
	}
}

func bannedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banned",
		Short: "List banned devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/moderation/banned", nil)
		},
	}
}

func activeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List active chat sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/presence/active", nil)
		},
	}
}

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect and transition message reports",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/moderation/reports?status="+status, nil)
		},
	}
	list.Flags().StringVar(&status, "status", "all", "pending|reviewed|resolved|dismissed|all")

	setStatus := &cobra.Command{
		Use:   "set-status <reportId> <status>",
		Short: "Transition a report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPatch, "/moderation/reports/"+args[0], map[string]string{
				"status": args[1],
			})
		},
	}

	cmd.AddCommand(list, setStatus)
	return cmd
}

func broadcastCmd() *cobra.Command {
	var message, url, notifType string
	var duration int
	cmd := &cobra.Command{
		Use:   "broadcast <title>",
		Short: "Publish a broadcast notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"title":    args[0],
				"message":  message,
				"type":     notifType,
				"duration": duration,
			}
			if url != "" {
				body["url"] = url
			}
			return call(http.MethodPost, "/broadcast", body)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "notification body (required)")
	cmd.Flags().StringVar(&url, "url", "", "optional link")
	cmd.Flags().StringVar(&notifType, "type", "info", "notification type")
	cmd.Flags().IntVar(&duration, "duration", 30, "display duration in seconds")
	cmd.MarkFlagRequired("message")
	return cmd
}

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push notification fan-out",
	}

	var body, url string
	send := &cobra.Command{
		Use:   "send <title>",
		Short: "Fan a push notification out to every subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{"title": args[0], "body": body}
			if url != "" {
				payload["url"] = url
			}
			return call(http.MethodPost, "/push/broadcast", payload)
		},
	}
	send.Flags().StringVarP(&body, "body", "b", "", "notification body (required)")
	send.Flags().StringVar(&url, "url", "", "optional link")
	send.MarkFlagRequired("body")

	var limit, offset int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show the delivery log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, fmt.Sprintf("/push/history?limit=%d&offset=%d", limit, offset), nil)
		},
	}
	history.Flags().IntVar(&limit, "limit", 50, "page size")
	history.Flags().IntVar(&offset, "offset", 0, "page offset")

	keys := &cobra.Command{
		Use:   "keys",
		Short: "Show the configured VAPID key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/push/keys", nil)
		},
	}

	cmd.AddCommand(send, history, keys)
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Provision an admin account and print its bearer token",
		Long:  "The token is printed once and only its hash is stored; keep it safe.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/admin/accounts", map[string]string{
				"name": args[0],
			})
		},
	}

	cmd.AddCommand(create)
	return cmd
}

func call(method, path string, body any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, serverURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(data))
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/planboard/internal/advisor"
	"github.com/mmynk/planboard/internal/calculator"
	"github.com/mmynk/planboard/internal/rpc"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the wedding advisor; without a question, start a chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		chat := advisor.NewChat(remoteAdviser{client: advisorClient()}, "")
		chat.ContextFunc = func() string { return planningContext(cmd.Context()) }

		if len(args) > 0 {
			reply, err := chat.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(reply.Text)
			return nil
		}
		return runChat(cmd.Context(), cmd, chat)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <idea>",
	Short: "Analyze an inspiration idea",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := advisorClient().AnalyzeIdea.CallUnary(cmd.Context(), connect.NewRequest(&rpc.AnalyzeIdeaRequest{
			Idea: strings.Join(args, " "),
		}))
		if err != nil {
			return err
		}
		fmt.Println(resp.Msg.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd, analyzeCmd)
}

func runChat(ctx context.Context, cmd *cobra.Command, chat *advisor.Chat) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Advisor: ")+chat.Messages()[0].Text)
	fmt.Fprintln(out, labelStyle.Render("(/reset clears the chat, empty line or Ctrl-D quits)"))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			return nil
		case "/reset":
			chat.Reset()
			fmt.Fprintln(out, titleStyle.Render("Advisor: ")+chat.Messages()[0].Text)
			continue
		}

		reply, err := chat.Send(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, titleStyle.Render("Advisor: ")+reply.Text)
	}
}

// remoteAdviser asks the server's advisor, which holds the API keys.
type remoteAdviser struct {
	client *rpc.AdvisorClient
}

func (r remoteAdviser) Advice(ctx context.Context, query, contextData string) string {
	resp, err := r.client.Advice.CallUnary(ctx, connect.NewRequest(&rpc.AdviceRequest{
		Query:   query,
		Context: contextData,
	}))
	if err != nil {
		slog.Debug("Advice RPC failed", "error", err)
		return advisor.AdviceFailedText
	}
	return resp.Msg.Text
}

// planningContext summarizes the document for the advisor. Failures fall
// back to the general planning stage.
func planningContext(ctx context.Context) string {
	doc, err := fetchDocument(ctx)
	if err != nil {
		return ""
	}
	eventDate, err := cfg.Advisor.EventTime()
	if err != nil {
		return ""
	}
	stats := calculator.Dashboard(doc, eventDate, time.Now())
	return fmt.Sprintf("%d of %d vendors booked, %s spent, %d guests, %d days left",
		stats.BookedVendors, stats.TotalVendors, formatMoney(stats.TotalSpent),
		stats.BrideGuests+stats.GroomGuests, stats.DaysLeft)
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/planboard/internal/calculator"
	"github.com/mmynk/planboard/internal/state"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Dashboard: countdown, vendors, spend and guests",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Budget by category with the expense breakdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		doc, err := fetchDocument(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(renderBudget(doc))
		return nil
	},
}

var guestsCmd = &cobra.Command{
	Use:   "guests [search]",
	Short: "List guests, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := fetchDocument(cmd.Context())
		if err != nil {
			return err
		}
		guests := doc.Guests
		if len(args) == 1 {
			guests = state.New(doc).SearchGuests(args[0])
		}
		fmt.Print(renderGuests(guests))
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Show the inspiration board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		doc, err := fetchDocument(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(renderNotes(doc.Notes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd, budgetCmd, guestsCmd, notesCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	doc, err := fetchDocument(cmd.Context())
	if err != nil {
		return err
	}
	eventDate, err := cfg.Advisor.EventTime()
	if err != nil {
		return err
	}
	stats := calculator.Dashboard(doc, eventDate, time.Now())
	location, _, _ := strings.Cut(cfg.Advisor.Location, ",")
	fmt.Print(renderDashboard(doc, stats, location))
	return nil
}

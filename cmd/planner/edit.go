package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/state"
)

var (
	flagVendorName     string
	flagVendorCategory string
	flagVendorPrice    float64
	flagVendorLocation string
	flagVendorNotes    string
	flagVendorURL      string
	flagResetRatings   bool
	flagResetSelection bool
	flagNoteImage      string
	flagNoteAnalyze    bool
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Manage vendors",
}

var vendorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a vendor to a category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var added models.Vendor
		_, err := mutate(cmd.Context(), func(s *state.Store) error {
			var err error
			added, err = s.AddVendor(models.Vendor{
				Name:          flagVendorName,
				Category:      flagVendorCategory,
				PriceEstimate: flagVendorPrice,
				Location:      flagVendorLocation,
				Notes:         flagVendorNotes,
				PortfolioURL:  flagVendorURL,
			})
			return err
		})
		if err != nil {
			return err
		}
		return done("Added %s (%s)", added.Name, added.ID)
	},
}

var vendorRateCmd = &cobra.Command{
	Use:   "rate <id> <1-5>",
	Short: "Rate a vendor, or --reset every rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagResetRatings {
			if _, err := mutate(cmd.Context(), func(s *state.Store) error {
				s.ResetRatings()
				return nil
			}); err != nil {
				return err
			}
			return done("All ratings reset")
		}
		if len(args) != 2 {
			return fmt.Errorf("expected <id> <rating>")
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}
		return vendorOp(cmd.Context(), args[0], "Rated", func(s *state.Store, id string) error {
			return s.RateVendor(id, rating)
		})
	},
}

var vendorBookCmd = &cobra.Command{
	Use:   "book <id>",
	Short: "Toggle the booked status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return vendorOp(cmd.Context(), args[0], "Toggled booking for", (*state.Store).ToggleBooked)
	},
}

var vendorFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return vendorOp(cmd.Context(), args[0], "Toggled favorite for", (*state.Store).ToggleFavorite)
	},
}

var vendorDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a vendor and clear its budget selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return vendorOp(cmd.Context(), args[0], "Deleted", (*state.Store).DeleteVendor)
	},
}

var vendorNotesCmd = &cobra.Command{
	Use:   "notes <id> <text>",
	Short: "Replace a vendor's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes := strings.Join(args[1:], " ")
		return vendorOp(cmd.Context(), args[0], "Updated notes for", func(s *state.Store, id string) error {
			return s.UpdateVendorNotes(id, notes)
		})
	},
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Manage the guest list",
}

var guestAddCmd = &cobra.Command{
	Use:   "add <bride|groom> <first> [last]",
	Short: "Add a guest to a side",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		last := ""
		if len(args) == 3 {
			last = args[2]
		}
		var added models.Guest
		_, err := mutate(cmd.Context(), func(s *state.Store) error {
			var err error
			added, err = s.AddGuest(models.Side(strings.ToLower(args[0])), args[1], last)
			return err
		})
		if err != nil {
			return err
		}
		return done("Added %s %s to %s", added.FirstName, added.LastName, added.Side.Label())
	},
}

var guestUpdateCmd = &cobra.Command{
	Use:   "update <id> <first> [last]",
	Short: "Rename a guest",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		last := ""
		if len(args) == 3 {
			last = args[2]
		}
		return guestOp(cmd.Context(), args[0], "Updated", func(s *state.Store, id string) error {
			return s.UpdateGuest(id, args[1], last)
		})
	},
}

var guestRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a guest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return guestOp(cmd.Context(), args[0], "Removed", (*state.Store).RemoveGuest)
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage vendor categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		if _, err := mutate(cmd.Context(), func(s *state.Store) error {
			return s.AddCategory(name)
		}); err != nil {
			return err
		}
		return done("Added category %s", name)
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <category> [vendor-id]",
	Short: "Select the vendor a category's budget uses; no vendor clears it",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagResetSelection {
			if _, err := mutate(cmd.Context(), func(s *state.Store) error {
				s.ResetSelections()
				return nil
			}); err != nil {
				return err
			}
			return done("All selections cleared")
		}
		if len(args) == 0 {
			return fmt.Errorf("expected <category> [vendor-id]")
		}

		category := args[0]
		_, err := mutate(cmd.Context(), func(s *state.Store) error {
			vendorID := ""
			if len(args) == 2 {
				var err error
				if vendorID, err = resolveID(vendorIDs(s.Document()), args[1]); err != nil {
					return err
				}
			}
			return s.SelectVendor(category, vendorID)
		})
		if err != nil {
			return err
		}
		return done("Updated %s selection", category)
	},
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage the inspiration board",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <idea>",
	Short: "Pin an idea to the board",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		var added models.InspirationNote
		_, err := mutate(cmd.Context(), func(s *state.Store) error {
			var err error
			added, err = s.AddNote(content, flagNoteImage)
			return err
		})
		if err != nil {
			return err
		}
		if err := done("Pinned %s", added.ID); err != nil {
			return err
		}
		if flagNoteAnalyze {
			return analyzeNote(cmd.Context(), added.ID, added.Content)
		}
		return nil
	},
}

var noteRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return noteOp(cmd.Context(), args[0], "Removed", (*state.Store).RemoveNote)
	},
}

var noteAnalyzeCmd = &cobra.Command{
	Use:   "analyze <id>",
	Short: "Ask the advisor about an idea and store the answer on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := fetchDocument(cmd.Context())
		if err != nil {
			return err
		}
		id, err := resolveID(noteIDs(doc), args[0])
		if err != nil {
			return err
		}
		for _, n := range doc.Notes {
			if n.ID == id {
				return analyzeNote(cmd.Context(), n.ID, n.Content)
			}
		}
		return state.ErrNotFound
	},
}

func init() {
	vendorAddCmd.Flags().StringVar(&flagVendorName, "name", "", "Business name")
	vendorAddCmd.Flags().StringVar(&flagVendorCategory, "category", "", "Category")
	vendorAddCmd.Flags().Float64Var(&flagVendorPrice, "price", 0, "Price estimate")
	vendorAddCmd.Flags().StringVar(&flagVendorLocation, "location", "", "Location")
	vendorAddCmd.Flags().StringVar(&flagVendorNotes, "notes", "", "Notes")
	vendorAddCmd.Flags().StringVar(&flagVendorURL, "url", "", "Portfolio URL")
	_ = vendorAddCmd.MarkFlagRequired("name")
	_ = vendorAddCmd.MarkFlagRequired("category")

	vendorRateCmd.Flags().BoolVar(&flagResetRatings, "reset", false, "Reset every rating")
	selectCmd.Flags().BoolVar(&flagResetSelection, "reset", false, "Clear every selection")
	noteAddCmd.Flags().StringVar(&flagNoteImage, "image", "", "Image URL")
	noteAddCmd.Flags().BoolVar(&flagNoteAnalyze, "analyze", false, "Analyze the idea right away")

	vendorCmd.AddCommand(vendorAddCmd, vendorRateCmd, vendorBookCmd, vendorFavoriteCmd, vendorDeleteCmd, vendorNotesCmd)
	guestCmd.AddCommand(guestAddCmd, guestUpdateCmd, guestRemoveCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	noteCmd.AddCommand(noteAddCmd, noteRemoveCmd, noteAnalyzeCmd)
	rootCmd.AddCommand(vendorCmd, guestCmd, categoryCmd, selectCmd, noteCmd)
}

func done(format string, args ...any) error {
	fmt.Println(okStyle.Render(fmt.Sprintf(format, args...)))
	return nil
}

func vendorOp(ctx context.Context, prefix, verb string, fn func(s *state.Store, id string) error) error {
	return entityOp(ctx, prefix, verb, vendorIDs, fn)
}

func guestOp(ctx context.Context, prefix, verb string, fn func(s *state.Store, id string) error) error {
	return entityOp(ctx, prefix, verb, guestIDs, fn)
}

func noteOp(ctx context.Context, prefix, verb string, fn func(s *state.Store, id string) error) error {
	return entityOp(ctx, prefix, verb, noteIDs, fn)
}

func entityOp(ctx context.Context, prefix, verb string, ids func(models.Document) []string, fn func(s *state.Store, id string) error) error {
	var id string
	_, err := mutate(ctx, func(s *state.Store) error {
		var err error
		if id, err = resolveID(ids(s.Document()), prefix); err != nil {
			return err
		}
		return fn(s, id)
	})
	if err != nil {
		return err
	}
	return done("%s %s", verb, id)
}

func analyzeNote(ctx context.Context, id, content string) error {
	resp, err := advisorClient().AnalyzeIdea.CallUnary(ctx, connect.NewRequest(&rpc.AnalyzeIdeaRequest{Idea: content}))
	if err != nil {
		return err
	}
	fmt.Println(resp.Msg.Text)

	_, err = mutate(ctx, func(s *state.Store) error {
		return s.SetSuggestion(id, resp.Msg.Text)
	})
	return err
}

// resolveID expands an id prefix, as printed by the list commands.
func resolveID(ids []string, prefix string) (string, error) {
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", state.ErrNotFound, prefix)
	}
	return match, nil
}

func vendorIDs(doc models.Document) []string {
	ids := make([]string, len(doc.Vendors))
	for i, v := range doc.Vendors {
		ids[i] = v.ID
	}
	return ids
}

func guestIDs(doc models.Document) []string {
	ids := make([]string, len(doc.Guests))
	for i, g := range doc.Guests {
		ids[i] = g.ID
	}
	return ids
}

func noteIDs(doc models.Document) []string {
	ids := make([]string, len(doc.Notes))
	for i, n := range doc.Notes {
		ids[i] = n.ID
	}
	return ids
}

package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/neurolearn/shell/store"
	"github.com/spf13/cobra"
)

func resourcesCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List and create learning resources on a running server",
	}

	cmd.AddCommand(
		resourcesListCmd(g),
		resourcesCreateCmd(g),
	)

	return cmd
}

func newStore(cmd *cobra.Command, g *globals) (*store.Store, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	return store.New(cfg.APIBaseURL(), store.WithLogger(logger)), nil
}

func resourcesListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all resources as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore(cmd, g)
			if err != nil {
				return err
			}

			st.FetchResources(cmd.Context())

			state := st.State()
			if state.Error != nil {
				return errors.New(*state.Error)
			}

			return printJSON(cmd.OutOrStdout(), state.Resources)
		},
	}
}

func resourcesCreateCmd(g *globals) *cobra.Command {
	var (
		title, content, resourceType string
		difficulty                   int
		sample, visual, audio, plain bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore(cmd, g)
			if err != nil {
				return err
			}

			r := store.Resource{
				"title":               title,
				"content":             content,
				"resource_type":       resourceType,
				"is_sample":           sample,
				"has_visual_aids":     visual,
				"has_audio":           audio,
				"has_simplified_text": plain,
			}

			if cmd.Flags().Changed("difficulty") {
				r["difficulty_level"] = difficulty
			}

			created, err := st.CreateResource(cmd.Context(), r)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Resource title")
	f.StringVar(&content, "content", "", "Resource content")
	f.StringVar(&resourceType, "type", "", "Resource type, e.g. lesson or exercise")
	f.IntVar(&difficulty, "difficulty", 0, "Difficulty level")
	f.BoolVar(&sample, "sample", false, "Mark as sample resource")
	f.BoolVar(&visual, "visual-aids", false, "Resource has visual aids")
	f.BoolVar(&audio, "audio", false, "Resource has audio")
	f.BoolVar(&plain, "simplified-text", false, "Resource has simplified text")

	for _, name := range []string{"title", "content", "type"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

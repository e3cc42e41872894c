package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/services"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "List models and choose them per session",
	}
	modelsCmd.AddCommand(newModelsListCommand(ctx))
	modelsCmd.AddCommand(newModelsGuideCommand(ctx))
	modelsCmd.AddCommand(newModelsUseCommand(ctx))
	return modelsCmd
}

type modelView struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chat and image models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			views := make([]modelView, 0, len(cfg.Models.Chat)+len(catalog.ImageModels()))
			for _, id := range cfg.Models.Chat {
				views = append(views, modelView{Kind: "chat", ID: id, Name: id, Default: id == cfg.Models.DefaultChat})
			}
			for _, model := range catalog.ImageModels() {
				views = append(views, modelView{Kind: "image", ID: model.ID, Name: model.Name, Default: model.ID == cfg.Models.DefaultImage})
			}
			return emit(ctx, cmd, views, func() string {
				rows := make([][]string, 0, len(views))
				for _, view := range views {
					marker := ""
					if view.Default {
						marker = "*"
					}
					rows = append(rows, []string{marker, titleLabel(view.Kind), view.Name, view.ID})
				}
				return renderTable([]string{"", "Kind", "Name", "ID"}, rows, nil)
			})
		},
	}
}

func newModelsGuideCommand(ctx *commandContext) *cobra.Command {
	var withReference bool
	cmd := &cobra.Command{
		Use:   "guide [image-model]",
		Short: "Explain what an image model can do",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelID := ""
			if len(args) == 1 {
				modelID = resolveImageModel(args[0])
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				modelID = cfg.Models.DefaultImage
			}
			guide := catalog.GuideFor(modelID, withReference)
			return emit(ctx, cmd, guide, func() string { return renderGuide(guide) })
		},
	}
	cmd.Flags().BoolVar(&withReference, "with-reference", false, "Describe limits while a reference image is set")
	return cmd
}

func newModelsUseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use <model>",
		Short: "Select the chat or image model for the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				requested := strings.TrimSpace(args[0])
				imageID := resolveImageModel(requested)
				if _, ok := catalog.LookupImageModel(imageID); ok {
					a.prefs.SetImageModel(cmd.Context(), session.ID, imageID)
					guide := catalog.GuideFor(imageID, a.pipeline.HasReference(session))
					a.toast.Show(guide.Toast)
					fmt.Fprintf(cmd.OutOrStdout(), "Session #%d now generates images with %s\n", session.ID, guide.ModelName)
					return nil
				}
				if session.Kind != api.KindChat {
					return services.Wrap(services.ErrValidation, "cli", "use model",
						fmt.Sprintf("%q is not an image model; see `weav models list`", requested), nil)
				}
				if !slices.Contains(a.cfg.Models.Chat, strings.ToLower(requested)) {
					return services.Wrap(services.ErrValidation, "cli", "use model",
						fmt.Sprintf("unknown model %q; see `weav models list`", requested), nil)
				}
				a.prefs.SetChatModel(cmd.Context(), session.ID, strings.ToLower(requested))
				fmt.Fprintf(cmd.OutOrStdout(), "Session #%d now chats with %s\n", session.ID, strings.ToLower(requested))
				return nil
			})
		},
	}
}

// resolveImageModel accepts an image model id or its display name.
func resolveImageModel(value string) string {
	value = strings.TrimSpace(value)
	for _, model := range catalog.ImageModels() {
		if strings.EqualFold(model.ID, value) || strings.EqualFold(model.Name, value) {
			return model.ID
		}
	}
	return value
}

func renderGuide(guide catalog.Guide) string {
	var b strings.Builder
	b.WriteString(guide.ModelName)
	b.WriteByte('\n')
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "%s- %s\n", statusIndent, item)
		}
	}
	section("Capabilities", guide.Capabilities)
	section("Limitations", guide.Limitations)
	section("Tips", guide.Tips)
	return strings.TrimRight(b.String(), "\n")
}

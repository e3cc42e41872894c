package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/generation"
	"weav/internal/prefs"
)

func newImageCommand(ctx *commandContext) *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Generate images in the current session",
	}
	imageCmd.AddCommand(newImageGenerateCommand(ctx))
	imageCmd.AddCommand(newImageRegenerateCommand(ctx))
	imageCmd.AddCommand(newImageAttachCommand(ctx))
	imageCmd.AddCommand(newImageReferenceCommand(ctx))
	imageCmd.AddCommand(newImageAttachmentsCommand(ctx))
	imageCmd.AddCommand(newImageClearCommand(ctx))
	return imageCmd
}

// imageSettingsFlags binds the per-call generation settings.
type imageSettingsFlags struct {
	model        string
	aspectRatio  string
	numImages    int
	resolution   string
	outputFormat string
	seed         int64
}

func (f *imageSettingsFlags) bind(cmd *cobra.Command, withCount bool) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Image model (defaults to the session's model)")
	cmd.Flags().StringVar(&f.aspectRatio, "aspect-ratio", "", "Aspect ratio such as 1:1 or 16:9")
	if withCount {
		cmd.Flags().IntVarP(&f.numImages, "num-images", "n", 0, "Number of images to generate")
	}
	cmd.Flags().StringVar(&f.resolution, "resolution", "", "Output resolution (1K, 2K, 4K)")
	cmd.Flags().StringVar(&f.outputFormat, "format", "", "Output format (png, jpeg, webp)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed for reproducible results")
}

func (f *imageSettingsFlags) options(cmd *cobra.Command) api.ImageOptions {
	opts := api.ImageOptions{
		AspectRatio:  strings.TrimSpace(f.aspectRatio),
		NumImages:    f.numImages,
		Resolution:   strings.TrimSpace(f.resolution),
		OutputFormat: strings.ToLower(strings.TrimSpace(f.outputFormat)),
	}
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	return opts
}

func newImageGenerateCommand(ctx *commandContext) *cobra.Command {
	var settings imageSettingsFlags
	var attachPaths []string
	var imageURLs []string
	var referencePath string
	var referenceURL string
	var referenceID int64

	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Generate images from a prompt",
		Long: "Generate images in the current image session. In a chat session the composer\n" +
			"switches to image mode for this request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				runCtx := cmd.Context()
				if session.Kind == api.KindChat {
					a.prefs.SetInputMode(session.ID, prefs.InputImage)
				}
				if referencePath != "" {
					if _, err := a.pipeline.UploadReference(runCtx, session.ID, referencePath); err != nil {
						return err
					}
				}
				if len(attachPaths) > 0 {
					if _, err := a.pipeline.AddAttachments(runCtx, session, attachPaths); err != nil {
						return err
					}
				}

				opts := generation.ImageOptions{
					Model:    settings.model,
					Settings: settings.options(cmd),
				}
				if referenceURL != "" {
					opts.Reference.URL = strings.TrimSpace(referenceURL)
				} else if cmd.Flags().Changed("reference-id") {
					id := referenceID
					opts.Reference.ID = &id
				}
				if len(imageURLs) > 0 {
					opts.ImageURLs = imageURLs
				}

				before := len(session.ImageRecords)
				result, err := runGeneration(cmd, a, "image", func(runCtx context.Context) (generation.Result, error) {
					return a.engine.SendImageRequest(runCtx, prompt, opts)
				})
				if reportErr := reportGeneration(ctx, cmd, a, "image", result, err); reportErr != nil {
					return reportErr
				}
				printNewImages(ctx, cmd, a, before)
				return nil
			})
		},
	}

	settings.bind(cmd, true)
	cmd.Flags().StringSliceVarP(&attachPaths, "attach", "a", nil, "Image files to upload and attach")
	cmd.Flags().StringSliceVar(&imageURLs, "image-url", nil, "Already uploaded attachment URLs")
	cmd.Flags().StringVarP(&referencePath, "reference", "r", "", "Reference image file to upload first")
	cmd.Flags().StringVar(&referenceURL, "reference-url", "", "Reference image URL")
	cmd.Flags().Int64Var(&referenceID, "reference-id", 0, "Use a generated image of this session as the reference")
	cmd.MarkFlagsMutuallyExclusive("reference", "reference-url", "reference-id")
	return cmd
}

func newImageRegenerateCommand(ctx *commandContext) *cobra.Command {
	var settings imageSettingsFlags
	var prompt string

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate the last image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				if session.Kind == api.KindChat {
					a.prefs.SetInputMode(session.ID, prefs.InputImage)
				}
				before := len(session.ImageRecords)
				result, err := runGeneration(cmd, a, "regenerate", func(runCtx context.Context) (generation.Result, error) {
					return a.engine.RegenerateImage(runCtx, session.ID, generation.RegenerateImageOptions{
						Prompt:   prompt,
						Model:    settings.model,
						Settings: settings.options(cmd),
					})
				})
				if reportErr := reportGeneration(ctx, cmd, a, "regenerate", result, err); reportErr != nil {
					return reportErr
				}
				printNewImages(ctx, cmd, a, before)
				return nil
			})
		},
	}

	settings.bind(cmd, false)
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "New prompt for the regenerated image")
	return cmd
}

func newImageAttachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <file...>",
		Short: "Upload image attachments and print their URLs",
		Long: "Upload image attachments for the current session. Attachments live for one\n" +
			"invocation; pass the printed URLs to `weav image generate --image-url`.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				if _, err := a.pipeline.AddAttachments(cmd.Context(), session, args); err != nil {
					return err
				}
				items := a.prefs.Attachments(session.ID)
				return emit(ctx, cmd, items, func() string { return renderAttachments(items) })
			})
		},
	}
}

func newImageReferenceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reference <file>",
		Short: "Upload a reference image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				url, err := a.pipeline.UploadReference(cmd.Context(), session.ID, args[0])
				if err != nil {
					return err
				}
				return emit(ctx, cmd, map[string]string{"url": url}, func() string {
					return url + "\nPass it to `weav image generate --reference-url`."
				})
			})
		},
	}
}

type attachmentPolicyView struct {
	Model        string `json:"model"`
	HasReference bool   `json:"has_reference"`
	MaxCount     int    `json:"max_count"`
	Message      string `json:"message,omitempty"`
}

func newImageAttachmentsCommand(ctx *commandContext) *cobra.Command {
	var regenerate bool
	cmd := &cobra.Command{
		Use:   "attachments",
		Short: "Show how many attachments the session's model accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				policy := a.pipeline.Policy(session, regenerate)
				view := attachmentPolicyView{
					Model:        a.prefs.ImageModel(session.ID),
					HasReference: a.pipeline.HasReference(session),
					MaxCount:     policy.MaxCount,
					Message:      policy.BlockMessage,
				}
				return emit(ctx, cmd, view, func() string {
					pairs := [][2]string{
						{"Model", catalog.ImageModelName(view.Model)},
						{"Reference set", yesNo(view.HasReference)},
						{"Attachments", fmt.Sprintf("up to %d", view.MaxCount)},
					}
					if view.MaxCount == 0 {
						pairs = append(pairs, [2]string{"Note", view.Message})
					}
					return renderKeyValues(pairs)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Show the limit for regenerate requests")
	return cmd
}

func newImageClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the session's stored model selections and image settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				a.pipeline.ForgetSession(cmd.Context(), session.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared local preferences for session #%d\n", session.ID)
				return nil
			})
		},
	}
}

func renderAttachments(items []prefs.Attachment) string {
	if len(items) == 0 {
		return "No attachments."
	}
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), titleLabel(string(item.Status)), item.RemoteURL})
	}
	return renderTable([]string{"#", "Status", "URL"}, rows, []columnAlignment{alignRight})
}

// printNewImages lists records added to the current session since before.
func printNewImages(ctx *commandContext, cmd *cobra.Command, a *app, before int) {
	if ctx.jsonOutput() {
		return
	}
	session := a.sessions.Current()
	if session == nil || len(session.ImageRecords) <= before {
		return
	}
	for _, record := range session.ImageRecords[before:] {
		fmt.Fprintln(cmd.OutOrStdout(), record.ImageURL)
	}
}

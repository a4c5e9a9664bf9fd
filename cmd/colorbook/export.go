package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/colorbook"
	"github.com/phanxgames/colorbook/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out     string
		flatten bool
	)
	cmd := &cobra.Command{
		Use:   "export key",
		Short: "Write a saved drawing to an image file",
		Long: `Write the saved drawing for key as PNG. Only the drawing layer is
written unless --flatten is given, which composites it over the page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			img, err := a.page(cmd.Context(), key, flatten, true)
			if err != nil {
				return err
			}
			if out == "" {
				out = key + colorbook.DefaultCodec.Ext()
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := colorbook.DefaultCodec.Encode(f, img); err != nil {
				f.Close()
				return fmt.Errorf("export: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <key>.png)")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "composite the drawing over its page")
	return cmd
}

func newPrintCmd(a *app) *cobra.Command {
	var (
		out  string
		size string
	)
	cmd := &cobra.Command{
		Use:   "print key",
		Short: "Write a page with its drawing to a PDF",
		Long: `Write the page for key with any saved drawing on top to a one-page
PDF. A key with no saved drawing prints the blank page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			img, err := a.page(cmd.Context(), key, true, false)
			if err != nil {
				return err
			}
			if out == "" {
				out = key + ".pdf"
			}
			if err := export.WritePDFFile(out, img, export.PDFOptions{Title: key, Size: size}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <key>.pdf)")
	cmd.Flags().StringVar(&size, "size", "A4", "paper size (A4, A3, Letter, Legal)")
	return cmd
}

// page assembles the Drawing for key at logical size, optionally over its
// Background. With requireDrawing unset a missing drawing yields a blank
// layer.
func (a *app) page(ctx context.Context, key string, flatten, requireDrawing bool) (image.Image, error) {
	docs, err := a.documents()
	if err != nil {
		return nil, err
	}
	layer := colorbook.NewLayer(a.cfg.Canvas.Width, a.cfg.Canvas.Height)
	data, err := docs.Load(ctx, key)
	switch {
	case errors.Is(err, colorbook.ErrNotFound) && !requireDrawing:
	case err != nil:
		return nil, err
	default:
		img, err := colorbook.DecodeImage(colorbook.DefaultCodec, data, "document")
		if err != nil {
			return nil, err
		}
		layer.Replace(img)
	}
	if !flatten {
		return layer.Image(), nil
	}

	bgs, err := a.backgrounds()
	if err != nil {
		return nil, err
	}
	vp := colorbook.NewViewport(layer.Width(), layer.Height(), a.cfg.Viewport.MaxScale)
	comp := colorbook.NewCompositor(vp, layer)
	bg, err := bgs.Background(ctx, key)
	switch {
	case errors.Is(err, colorbook.ErrNotFound):
		colorbook.Logger().Info("export: no page background", "key", key)
	case err != nil:
		return nil, err
	default:
		comp.ReplaceBackground(bg)
	}
	return comp.Flatten(), nil
}

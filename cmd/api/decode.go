package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anime-shed/qr-decoder-go/internal/container"
	"github.com/anime-shed/qr-decoder-go/pkg/models"

	"github.com/spf13/cobra"
)

var (
	decodeURL      string
	decodeExpected string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode the QR code of a single image URL and print the result",
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeURL, "url", "u", "", "image URL to decode")
	decodeCmd.Flags().StringVar(&decodeExpected, "expected", "", "text the QR code is expected to carry")
	_ = decodeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(decodeCmd)
}

type decodeOutput struct {
	ImageURL         string                 `json:"image_url"`
	Found            bool                   `json:"found"`
	Texts            []string               `json:"texts"`
	BytesFetched     int64                  `json:"bytes_fetched"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	Comparison       *models.TextComparison `json:"comparison,omitempty"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	result, err := c.Service().Process(ctx, models.DecodeRequest{
		ImageURL:     decodeURL,
		ExpectedText: decodeExpected,
	})
	if err != nil {
		return err
	}

	texts := result.Texts
	if texts == nil {
		texts = []string{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(decodeOutput{
		ImageURL:         result.ImageURL,
		Found:            result.Found(),
		Texts:            texts,
		BytesFetched:     result.BytesFetched,
		ProcessingTimeMs: result.ProcessingTime.Milliseconds(),
		Comparison:       result.Comparison,
	})
}

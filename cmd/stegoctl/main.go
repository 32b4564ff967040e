// stegoctl embeds and extracts secrets from carrier files on the command
// line, using the same codecs as the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stego-backend/stego"
	"stego-backend/transcode"
)

var (
	flagPassword string
	flagEncrypt  bool
	flagECC      bool
	flagOut      string
)

func main() {
	root := &cobra.Command{
		Use:           "stegoctl",
		Short:         "LSB steganography for audio and video carriers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagPassword, "password", "p", "", "payload password")
	root.PersistentFlags().BoolVar(&flagEncrypt, "encrypt", true, "encrypt the payload")
	root.PersistentFlags().StringVarP(&flagOut, "out", "o", "", "output file path")

	root.AddCommand(audioCmd(), videoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func audioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "WAV carrier operations",
	}

	embed := &cobra.Command{
		Use:   "embed <carrier.wav> <secret-file>",
		Short: "Hide a secret file in a WAV carrier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			carrier, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			secret, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			codec := stego.NewAudioCodec(stego.AudioOptions{
				Password: flagPassword,
				Encrypt:  flagEncrypt,
				UseECC:   flagECC,
			})
			out, err := codec.Embed(carrier, secret)
			if err != nil {
				return err
			}
			return writeOutput(out, "stego.wav")
		},
	}
	embed.Flags().BoolVar(&flagECC, "ecc", true, "apply Hamming(7,4) error correction")

	extract := &cobra.Command{
		Use:   "extract <stego.wav>",
		Short: "Recover a secret from a stego WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			carrier, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			codec := stego.NewAudioCodec(stego.AudioOptions{
				Password: flagPassword,
				Encrypt:  flagEncrypt,
			})
			plain, err := codec.Extract(carrier)
			if err != nil {
				return err
			}
			if flagOut != "" {
				return os.WriteFile(flagOut, plain, 0o644)
			}
			_, err = os.Stdout.Write(plain)
			return err
		},
	}

	cmd.AddCommand(embed, extract)
	return cmd
}

func videoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Video carrier operations (requires ffmpeg)",
	}

	var container string

	embed := &cobra.Command{
		Use:   "embed <carrier-video> <secret-file>",
		Short: "Hide a secret file in a video carrier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			carrier, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			secret, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			codec := stego.NewVideoCodec(stego.VideoOptions{
				Password:  flagPassword,
				Encrypt:   flagEncrypt,
				Container: container,
			}, transcode.New())
			out, ext, err := codec.Embed(carrier, stego.FilePayload(secret, args[1]))
			if err != nil {
				return err
			}
			return writeOutput(out, "stego."+ext)
		},
	}
	embed.Flags().StringVar(&container, "container", "mkv", "output container (mkv or avi)")

	extract := &cobra.Command{
		Use:   "extract <stego-video>",
		Short: "Recover a secret from a stego video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			carrier, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			codec := stego.NewVideoCodec(stego.VideoOptions{
				Password: flagPassword,
				Encrypt:  flagEncrypt,
			}, transcode.New())
			payload, err := codec.Extract(carrier)
			if err != nil {
				return err
			}
			if payload.Kind == stego.PayloadText && flagOut == "" {
				fmt.Println(string(payload.Data))
				return nil
			}
			name := flagOut
			if name == "" {
				name = payload.Filename
			}
			if err := os.WriteFile(name, payload.Data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", name, len(payload.Data))
			return nil
		},
	}

	cmd.AddCommand(embed, extract)
	return cmd
}

func writeOutput(data []byte, fallback string) error {
	name := flagOut
	if name == "" {
		name = fallback
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", name, len(data))
	return nil
}

// Package handlers is made to handle requests
package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"stego-backend/audio"
	"stego-backend/models"
	"stego-backend/stego"
)

const maxFormMemory = 32 << 20 // 32MB

type StegoHandler struct {
	decoder    *audio.Decoder
	transcoder stego.Transcoder
}

func NewStegoHandler(tc stego.Transcoder) *StegoHandler {
	return &StegoHandler{
		decoder:    audio.NewDecoder(),
		transcoder: tc,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "2.0.0",
	})
}

// boolField parses a boolean form value; anything but false/0/no counts as
// true, and a missing field defaults to true.
func boolField(c *gin.Context, name string) bool {
	value := strings.ToLower(c.DefaultPostForm(name, "true"))
	return value != "false" && value != "0" && value != "no"
}

// statusFromErr maps the codec error taxonomy onto HTTP statuses: caller
// mistakes are 400, external tool failures are 500.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, stego.ErrFormat),
		errors.Is(err, stego.ErrCapacity),
		errors.Is(err, stego.ErrTruncated),
		errors.Is(err, stego.ErrCrypto),
		errors.Is(err, stego.ErrSizeLimit):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func rejectStego(c *gin.Context, status int, format string, args ...any) {
	c.JSON(status, models.StegoResponse{
		Success: false,
		Message: fmt.Sprintf(format, args...),
	})
}

func rejectExtract(c *gin.Context, status int, format string, args ...any) {
	c.JSON(status, models.ExtractResponse{
		Success: false,
		Message: fmt.Sprintf(format, args...),
	})
}

func readFormFile(c *gin.Context, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %v", field, err)
	}
	return data, header, nil
}

// resolveSecretPayload builds the payload from the secret_file field if
// present, otherwise from the message field: UTF-8 message bytes become a
// text payload, anything else a file payload.
func (h *StegoHandler) resolveSecretPayload(c *gin.Context) (stego.Payload, error) {
	if data, header, err := readFormFile(c, "secret_file"); err == nil {
		if len(data) == 0 {
			return stego.Payload{}, fmt.Errorf("secret file is empty")
		}
		return stego.FilePayload(data, header.Filename), nil
	}

	data, header, err := readFormFile(c, "message")
	if err != nil {
		return stego.Payload{}, fmt.Errorf("no secret payload provided")
	}
	if len(data) == 0 {
		return stego.Payload{}, fmt.Errorf("message must not be empty")
	}
	if utf8.Valid(data) {
		return stego.TextPayload(string(data)), nil
	}
	return stego.FilePayload(data, header.Filename), nil
}

// carrierWAV loads the audio carrier, converting MP3 uploads to WAV so the
// codec always sees uncompressed samples.
func (h *StegoHandler) carrierWAV(c *gin.Context) ([]byte, error) {
	data, header, err := readFormFile(c, "carrier")
	if err != nil {
		return nil, fmt.Errorf("carrier audio file is required")
	}
	if strings.ToLower(filepath.Ext(header.Filename)) == ".mp3" {
		wavData, _, err := h.decoder.MP3ToWAV(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert MP3 carrier: %v", err)
		}
		return wavData, nil
	}
	return data, nil
}

func (h *StegoHandler) AudioEmbed(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		rejectStego(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return
	}

	carrier, err := h.carrierWAV(c)
	if err != nil {
		rejectStego(c, http.StatusBadRequest, "%v", err)
		return
	}

	message, _, err := readFormFile(c, "message")
	if err != nil {
		rejectStego(c, http.StatusBadRequest, "Message file is required")
		return
	}
	if len(message) == 0 {
		rejectStego(c, http.StatusBadRequest, "Message must not be empty")
		return
	}

	codec := stego.NewAudioCodec(stego.AudioOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
		UseECC:   boolField(c, "ecc"),
	})

	stegoWAV, err := codec.Embed(carrier, message)
	if err != nil {
		rejectStego(c, statusFromErr(err), "Failed to embed secret data: %v", err)
		return
	}

	psnr := audio.CalculatePSNR(carrier, stegoWAV)

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=stego.wav")
	c.Header("X-Stego-Method", "WAV sample LSB")
	c.Header("X-Stego-PSNR", fmt.Sprintf("%.2f", psnr))
	c.Data(http.StatusOK, "audio/wav", stegoWAV)
}

func (h *StegoHandler) AudioExtract(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		rejectExtract(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return
	}

	carrier, _, err := readFormFile(c, "carrier")
	if err != nil {
		rejectExtract(c, http.StatusBadRequest, "Carrier audio file is required")
		return
	}

	codec := stego.NewAudioCodec(stego.AudioOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
	})

	plain, err := codec.Extract(carrier)
	if err != nil {
		rejectExtract(c, statusFromErr(err), "Failed to extract secret data: %v", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": string(plain)})
}

func (h *StegoHandler) VideoEmbed(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		rejectStego(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return
	}

	carrier, _, err := readFormFile(c, "carrier")
	if err != nil {
		rejectStego(c, http.StatusBadRequest, "Carrier video file is required")
		return
	}

	payload, err := h.resolveSecretPayload(c)
	if err != nil {
		rejectStego(c, http.StatusBadRequest, "%v", err)
		return
	}

	// The ecc field is accepted for wire compatibility but the video path
	// never applies ECC.
	codec := stego.NewVideoCodec(stego.VideoOptions{
		Password:  c.PostForm("password"),
		Encrypt:   boolField(c, "encrypt"),
		Container: c.DefaultPostForm("container", "mkv"),
	}, h.transcoder)

	content, ext, err := codec.Embed(carrier, payload)
	if err != nil {
		rejectStego(c, statusFromErr(err), "Failed to embed secret data: %v", err)
		return
	}

	mime := map[string]string{
		"mkv": "video/x-matroska",
		"avi": "video/x-msvideo",
	}[ext]
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=stego.%s", ext))
	c.Data(http.StatusOK, mime, content)
}

func (h *StegoHandler) VideoExtract(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		rejectExtract(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return
	}

	carrier, _, err := readFormFile(c, "carrier")
	if err != nil {
		rejectExtract(c, http.StatusBadRequest, "Carrier video file is required")
		return
	}

	codec := stego.NewVideoCodec(stego.VideoOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
	}, h.transcoder)

	payload, err := codec.Extract(carrier)
	if err != nil {
		rejectExtract(c, statusFromErr(err), "Failed to extract secret data: %v", err)
		return
	}
	respondPayload(c, payload)
}

func (h *StegoHandler) ImageEmbed(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		rejectStego(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return
	}

	carrier, _, err := readFormFile(c, "carrier")
	if err != nil {
		rejectStego(c, http.StatusBadRequest, "Carrier image file is required")
		return
	}

	payload, err := h.resolveSecretPayload(c)
	if err != nil {
		rejectStego(c, http.StatusBadRequest, "%v", err)
		return
	}

	codec := stego.NewImageCodec(stego.ImageOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
	})

	content, err := codec.Embed(carrier, payload)
	if err != nil {
		rejectStego(c, statusFromErr(err), "Failed to embed secret data: %v", err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=stego.bmp")
	c.Data(http.StatusOK, "image/bmp", content)
}

func (h *StegoHandler) ImageExtract(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		rejectExtract(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return
	}

	carrier, _, err := readFormFile(c, "carrier")
	if err != nil {
		rejectExtract(c, http.StatusBadRequest, "Carrier image file is required")
		return
	}

	codec := stego.NewImageCodec(stego.ImageOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
	})

	payload, err := codec.Extract(carrier)
	if err != nil {
		rejectExtract(c, statusFromErr(err), "Failed to extract secret data: %v", err)
		return
	}
	respondPayload(c, payload)
}

func (h *StegoHandler) TextEmbed(c *gin.Context) {
	codec := stego.NewTextCodec(stego.TextOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
	})

	watermarked, err := codec.Embed(c.PostForm("host_text"), c.PostForm("message"))
	if err != nil {
		rejectStego(c, statusFromErr(err), "Failed to embed text watermark: %v", err)
		return
	}
	c.JSON(http.StatusOK, models.TextEmbedResponse{Watermarked: watermarked})
}

func (h *StegoHandler) TextExtract(c *gin.Context) {
	codec := stego.NewTextCodec(stego.TextOptions{
		Password: c.PostForm("password"),
		Encrypt:  boolField(c, "encrypt"),
	})

	message, err := codec.Extract(c.PostForm("watermarked_text"))
	if err != nil {
		rejectExtract(c, statusFromErr(err), "Failed to extract text watermark: %v", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// respondPayload renders an extracted payload: text as a plain message,
// files base64-armored under a file object.
func respondPayload(c *gin.Context, payload stego.Payload) {
	if payload.Kind == stego.PayloadFile {
		c.JSON(http.StatusOK, models.ExtractResponse{
			Success: true,
			File: &models.SecretFile{
				Filename: payload.Filename,
				Data:     base64.StdEncoding.EncodeToString(payload.Data),
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": string(payload.Data)})
}

package main

import (
	"context"
	"encoding/binary"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"interview-capture-service/internal/service/upload"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Exercises the full upload protocol against a real storage endpoint:
// token fetch, folder hierarchy, init, transfer.
func main() {
	audioFile := flag.String("audio", "../../testdata/sample.wav", "Path to WAV file to upload")
	baseURL := flag.String("storage", "http://localhost:8081", "Object storage base URL")
	tokenURL := flag.String("token", "http://localhost:8082/token", "Token broker URL")
	rootFolder := flag.String("root", "InterviewRecordings", "Root folder name")
	userID := flag.String("user", "user-demo", "User folder name")
	name := flag.String("name", "1", "Artifact name")
	flag.Parse()

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		log.Fatalf("Failed to read audio file: %v", err)
	}
	if len(data) < wavHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	numChannels := binary.LittleEndian.Uint16(data[22:24])
	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	log.Printf("WAV file: channels=%d sampleRate=%d bytes=%d", numChannels, sampleRate, len(data))

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	tokens := upload.NewTokenClient(*tokenURL, 30*time.Second, logger)
	storage := upload.NewClient(*baseURL, 30*time.Second, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	token, err := tokens.Fetch(ctx)
	if err != nil {
		log.Fatalf("Token fetch failed: %v", err)
	}
	log.Printf("Token fetched, expires in %ds", token.ExpiresIn)

	rootID, err := storage.CreateFolder(ctx, token, *rootFolder, "")
	if err != nil {
		log.Fatalf("Root folder failed: %v", err)
	}
	userFolderID, err := storage.CreateFolder(ctx, token, *userID, rootID)
	if err != nil {
		log.Fatalf("User folder failed: %v", err)
	}
	audiosID, err := storage.CreateFolder(ctx, token, "Audios", userFolderID)
	if err != nil {
		log.Fatalf("Audios folder failed: %v", err)
	}
	log.Printf("Folders resolved: root=%s user=%s audios=%s", rootID, userFolderID, audiosID)

	location, err := storage.InitUpload(ctx, token, audiosID, *name)
	if err != nil {
		log.Fatalf("Init upload failed: %v", err)
	}
	log.Printf("Upload session: %s", location)

	fileID, err := storage.Transfer(ctx, location, "audio/wav", data)
	if err != nil {
		log.Fatalf("Transfer failed: %v", err)
	}

	log.Printf("Uploaded %d bytes as file %s in %v", len(data), fileID, time.Since(start))
}

package factory

import (
	"testing"

	"github.com/anime-shed/image-ocr-go/internal/config"
	"github.com/anime-shed/image-ocr-go/internal/recognizer"
	"github.com/anime-shed/image-ocr-go/internal/storage"
)

func TestStorageTypes(t *testing.T) {
	cfg := config.Default()
	if got := StorageTypes(cfg); len(got) != 1 || got[0] != HTTPStorage {
		t.Errorf("Expected only HTTP storage, got %v", got)
	}

	cfg.AzureStorageAccount = "acct"
	cfg.AzureStorageKey = "a2V5"
	if got := StorageTypes(cfg); len(got) != 2 || got[1] != AzureStorage {
		t.Errorf("Expected HTTP and Azure storage, got %v", got)
	}
}

func TestNewImageFetcher_HTTPOnly(t *testing.T) {
	f, err := NewImageFetcher(config.Default())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := f.(*storage.HTTPImageFetcher); !ok {
		t.Errorf("Expected *storage.HTTPImageFetcher, got %T", f)
	}
}

func TestNewImageFetcher_WithAzure(t *testing.T) {
	cfg := config.Default()
	cfg.AzureStorageAccount = "acct"
	cfg.AzureStorageKey = "a2V5"

	f, err := NewImageFetcher(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := f.(*storage.RoutingFetcher); !ok {
		t.Errorf("Expected *storage.RoutingFetcher, got %T", f)
	}
}

func TestNewImageFetcher_BadAzureKey(t *testing.T) {
	cfg := config.Default()
	cfg.AzureStorageAccount = "acct"
	cfg.AzureStorageKey = "%%%"

	if _, err := NewImageFetcher(cfg); err == nil {
		t.Error("Expected error for invalid account key")
	}
}

func TestNewRecognizer(t *testing.T) {
	cfg := config.Default()
	cfg.OCRLanguage = "eng+deu"

	rec, err := NewRecognizer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r, ok := rec.(*recognizer.TesseractRecognizer)
	if !ok {
		t.Fatalf("Expected *recognizer.TesseractRecognizer, got %T", rec)
	}
	if langs := r.Languages(); len(langs) != 2 || langs[1] != "deu" {
		t.Errorf("Unexpected languages %v", langs)
	}

	cfg.OCRLanguage = ""
	if _, err := NewRecognizer(cfg); err == nil {
		t.Error("Expected error without languages")
	}
}

func TestNewRecognizer_OpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.OCREngine = config.EngineOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIModel = "gpt-4o-mini"

	rec, err := NewRecognizer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	v, ok := rec.(*recognizer.VisionRecognizer)
	if !ok {
		t.Fatalf("Expected *recognizer.VisionRecognizer, got %T", rec)
	}
	if v.Model() != "gpt-4o-mini" {
		t.Errorf("Unexpected model %q", v.Model())
	}

	cfg.OpenAIAPIKey = ""
	if _, err := NewRecognizer(cfg); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestNewRecognizer_UnknownEngine(t *testing.T) {
	cfg := config.Default()
	cfg.OCREngine = "easyocr"
	if _, err := NewRecognizer(cfg); err == nil {
		t.Error("Expected error for unknown engine")
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Margays/config"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// AdviceService turns a weak-area report into a short study recommendation.
// Advisory text only; never persisted and never part of scoring.
type AdviceService interface {
	StudyAdvice(weakAreas []dto.WeakAreaDTO) (string, error)
}

type adviceService struct {
	model *genai.GenerativeModel
}

// NewAdviceService builds a Gemini-backed advice generator. Without an API
// key the service stays non-functional and returns empty advice.
func NewAdviceService(cfg *config.Config) (AdviceService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Study advice will be disabled.")
		return &adviceService{}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &adviceService{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

func (s *adviceService) StudyAdvice(weakAreas []dto.WeakAreaDTO) (string, error) {
	if s.model == nil || len(weakAreas) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("You are a TOEIC tutor. A student just finished a practice test. ")
	b.WriteString("Their weakest TOEIC parts, worst first:\n")
	for _, wa := range weakAreas {
		fmt.Fprintf(&b, "- Part %d (%s): %d/%d correct (%.0f%%)\n", wa.Section, wa.Skill, wa.Correct, wa.Total, wa.AccuracyPercent)
	}
	b.WriteString("Give 3 short, concrete study tips targeting these parts. Plain text, no headings.")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	resp, err := s.model.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

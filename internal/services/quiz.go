package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"reelearn-backend/internal/models"
)

const (
	quizQuestionTarget = 5
	quizQuestionMin    = 3
)

type QuizService struct {
	gen    TextGenerator
	videos videoStore
}

func NewQuizService(gen TextGenerator, videos videoStore) *QuizService {
	return &QuizService{gen: gen, videos: videos}
}

// Generate produces a quiz for the video. The caller persists it, replacing
// any prior quiz for that video.
func (s *QuizService) Generate(ctx context.Context, videoID, transcript string) (*models.Quiz, error) {
	if err := checkTranscription(ctx, s.videos, videoID, transcript); err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateText(ctx, buildQuizPrompt(transcript), GenerateOptions{
		Temperature:     0.4,
		MaxOutputTokens: 2048,
		JSONResponse:    true,
	})
	if err != nil {
		return nil, err
	}

	questions := parseQuizQuestions(raw)
	if len(questions) < quizQuestionMin {
		return nil, &ParseError{Message: "not enough valid questions generated"}
	}
	if len(questions) > quizQuestionTarget {
		questions = questions[:quizQuestionTarget]
	}

	now := time.Now().UTC()
	quizID := fmt.Sprintf("quiz_%s_%d", videoID, now.UnixMilli())
	for i := range questions {
		questions[i].ID = fmt.Sprintf("%s_q%d", quizID, i+1)
	}

	return &models.Quiz{
		ID:          quizID,
		VideoID:     videoID,
		Questions:   questions,
		GeneratedAt: now,
	}, nil
}

func buildQuizPrompt(transcript string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational assessor. Generate quiz questions that test understanding of the following short-video transcript.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")
	b.WriteString("Generate exactly 5 multiple-choice questions.\n\n")
	b.WriteString(`JSON shape:
{"questions": [{"question": "string", "options": ["string", "string", "string", "string"], "correctOptionIndex": 0, "explanation": "string"}]}

Every question must have exactly 4 options and correctOptionIndex between 0 and 3.
The explanation must say why the correct answer is right in one or two sentences.
`)
	b.WriteString("\n---TRANSCRIPT START---\n")
	b.WriteString(transcript)
	b.WriteString("\n---TRANSCRIPT END---\n")

	return b.String()
}

// The model is not guaranteed to honor the JSON hint, so parsing degrades
// from strict JSON to semi-structured text. Strategies are tried in order;
// the first one that yields at least one valid question wins. No strategy
// ever fabricates a question that fails the 4-option/valid-index contract.
type quizParseStrategy func(raw string) ([]models.QuizQuestion, bool)

var quizParseStrategies = []quizParseStrategy{
	parseQuizJSONObject,
	parseQuizJSONArray,
	parseQuizText,
}

func parseQuizQuestions(raw string) []models.QuizQuestion {
	raw = stripCodeFences(raw)
	for _, strategy := range quizParseStrategies {
		if questions, ok := strategy(raw); ok {
			return questions
		}
	}
	return nil
}

// Strategy 1: an object carrying a "questions" array.
func parseQuizJSONObject(raw string) ([]models.QuizQuestion, bool) {
	var resp struct {
		Questions []map[string]interface{} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil || resp.Questions == nil {
		return nil, false
	}
	return filterValidQuestions(resp.Questions)
}

// Strategy 2: the response itself is an array of question-like objects.
func parseQuizJSONArray(raw string) ([]models.QuizQuestion, bool) {
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	return filterValidQuestions(items)
}

func filterValidQuestions(items []map[string]interface{}) ([]models.QuizQuestion, bool) {
	var valid []models.QuizQuestion
	for _, item := range items {
		if q, ok := asQuizQuestion(item); ok {
			valid = append(valid, q)
		}
	}
	return valid, len(valid) > 0
}

// asQuizQuestion narrows one untyped JSON object to a QuizQuestion. It
// returns false instead of guessing when any field fails the contract.
func asQuizQuestion(item map[string]interface{}) (models.QuizQuestion, bool) {
	question, ok := item["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return models.QuizQuestion{}, false
	}

	rawOptions, ok := item["options"].([]interface{})
	if !ok || len(rawOptions) != 4 {
		return models.QuizQuestion{}, false
	}
	options := make([]string, 0, 4)
	for _, o := range rawOptions {
		s, ok := o.(string)
		if !ok {
			return models.QuizQuestion{}, false
		}
		options = append(options, s)
	}

	idxFloat, ok := item["correctOptionIndex"].(float64)
	if !ok || idxFloat != float64(int(idxFloat)) {
		return models.QuizQuestion{}, false
	}
	idx := int(idxFloat)
	if idx < 0 || idx > 3 {
		return models.QuizQuestion{}, false
	}

	explanation, ok := item["explanation"].(string)
	if !ok {
		return models.QuizQuestion{}, false
	}

	return models.QuizQuestion{
		Question:           strings.TrimSpace(question),
		Options:            options,
		CorrectOptionIndex: idx,
		Explanation:        explanation,
	}, true
}

const defaultExplanation = "No explanation provided."

var (
	questionBlockRe = regexp.MustCompile(`(?mi)^\s*(?:question\s*\d+|q\d+)\s*[:.]`)
	// Options may be letter-prefixed (A) ...) or number-prefixed (1) ...);
	// both styles are accepted uniformly within any block.
	optionLineRe      = regexp.MustCompile(`^\s*([A-Da-d1-4])[.):]\s*(.+)$`)
	answerLineRe      = regexp.MustCompile(`(?i)^\s*(?:correct\s*answer|answer|index)\s*[:=]\s*([A-Da-d0-3])\b`)
	explanationLineRe = regexp.MustCompile(`(?i)^\s*explanation\s*[:=]\s*(.+)$`)
)

// Strategy 3: plain text (or a {"content": "..."} wrapper) split on
// "Question N:" / "QN:" markers. A block that fails to yield
// question+options+valid index is silently skipped, not fatal.
func parseQuizText(raw string) ([]models.QuizQuestion, bool) {
	text := raw
	var wrapper struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil && wrapper.Content != "" {
		text = wrapper.Content
	}

	blocks := questionBlockRe.Split(text, -1)
	if len(blocks) < 2 {
		return nil, false
	}

	var questions []models.QuizQuestion
	// Anything before the first marker is preamble.
	for _, block := range blocks[1:] {
		if q, ok := parseQuestionBlock(block); ok {
			questions = append(questions, q)
		}
	}
	return questions, len(questions) > 0
}

func parseQuestionBlock(block string) (models.QuizQuestion, bool) {
	var (
		question    string
		options     []string
		correctIdx  = -1
		explanation string
	)

	for _, line := range strings.Split(block, "\n") {
		if m := optionLineRe.FindStringSubmatch(line); m != nil && len(options) < 4 {
			options = append(options, strings.TrimSpace(m[2]))
			continue
		}
		if m := answerLineRe.FindStringSubmatch(line); m != nil {
			correctIdx = answerToIndex(m[1])
			continue
		}
		if m := explanationLineRe.FindStringSubmatch(line); m != nil {
			explanation = strings.TrimSpace(m[1])
			continue
		}
		if question == "" {
			question = strings.TrimSpace(line)
		}
	}

	if question == "" || len(options) != 4 || correctIdx < 0 || correctIdx > 3 {
		return models.QuizQuestion{}, false
	}
	if explanation == "" {
		explanation = defaultExplanation
	}

	return models.QuizQuestion{
		Question:           question,
		Options:            options,
		CorrectOptionIndex: correctIdx,
		Explanation:        explanation,
	}, true
}

// answerToIndex converts an answer marker to a zero-based option index:
// letters by their position in "ABCD", digits taken as already zero-based.
func answerToIndex(marker string) int {
	marker = strings.ToUpper(strings.TrimSpace(marker))
	if marker >= "0" && marker <= "3" {
		return int(marker[0] - '0')
	}
	return strings.Index("ABCD", marker)
}

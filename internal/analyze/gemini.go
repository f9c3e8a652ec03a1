package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"finder/internal/model"
)

// DefaultModel is the Gemini model used for item analysis.
const DefaultModel = "gemini-3-flash-preview"

// callTimeout bounds a single provider call. Expiry is reported as a
// SERVER_ERROR-class failure.
const callTimeout = 20 * time.Second

// defaultPrompt is sent when the caller provides neither an image caption
// nor a prompt; the provider is never called with an empty payload.
const defaultPrompt = "이 물건에 대해 설명해줘."

const systemInstruction = `당신은 학교 분실물 센터의 AI 도우미입니다.
제공된 이미지나 텍스트를 분석하여 다음 정보를 JSON으로 반환하세요:
- title: 물건의 이름 (예: 파란색 필통)
- category: 전자기기, 의류, 학용품, 지갑/카드, 악세사리, 기타 중 선택
- tags: 검색에 유용한 키워드 3개 리스트
- description: 물건의 특징 (색상, 상태 등)`

// responseSchema constrains generation server-side to exactly the four
// fields of an AnalysisResult, instead of parsing free text.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"category":    {Type: genai.TypeString},
		"tags":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"description": {Type: genai.TypeString},
	},
	Required: []string{"title", "category", "tags", "description"},
}

// Gemini analyzes items with Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed analyzer. The API key is required; the
// caller decides how to behave when it is absent (the HTTP gateway reports
// API_KEY_MISSING without attempting any call).
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{client: client, model: modelName}, nil
}

// Analyze sends the image and/or prompt to Gemini and returns the structured
// result. All failures come back as *Error.
func (g *Gemini) Analyze(ctx context.Context, req Request) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var parts []*genai.Part
	if len(req.ImageData) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(req.ImageData, mime))
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &Error{Kind: KindServerError, HTTPStatus: 500, Message: "empty response from model"}
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &Error{Kind: KindServerError, HTTPStatus: 500, Message: fmt.Sprintf("malformed model output: %v", err)}
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return &result, nil
}

// classifyProviderError maps SDK errors (including context expiry) onto the
// classified error kinds.
func classifyProviderError(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return Classify(apiErr.Code, apiErr.Message)
	}
	return Classify(0, err.Error())
}

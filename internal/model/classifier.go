package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config wires a sequence-classification model and its tokenizer.
type Config struct {
	OrtDLL        string `json:"ortDll"`
	ModelPath     string `json:"modelPath"`
	TokenizerPath string `json:"tokenizerPath"`
	MaxSeqLen     int    `json:"maxSeqLen"`
	CacheDir      string `json:"cacheDir"`
	ModelID       string `json:"modelId"`
	// NumLabels overrides the label count when the model's output shape
	// declares a dynamic dimension.
	NumLabels int `json:"numLabels"`
}

// Token is one tokenizer token with its byte span in the source text.
type Token struct {
	Text  string
	ID    int
	Start int
	End   int
}

// Predictor exposes the minimal surface the explainers need.
type Predictor interface {
	Scores(ctx context.Context, texts []string) ([][]float32, error)
	Tokenize(text string) ([]Token, error)
	MaskToken() string
	NumLabels() int
	Close() error
}

// Classifier runs a sequence-classification ONNX model with a HuggingFace
// tokenizer. Run calls are serialized; the session is not re-entrant.
type Classifier struct {
	cfg        Config
	tk         *tokenizer.Tokenizer
	session    *ort.DynamicAdvancedSession
	inputNames []string
	numLabels  int
	maskToken  string
	cache      *scoreCache

	mu sync.Mutex
}

var ortInitOnce sync.Once

// NewClassifier initializes the ONNX Runtime session and tokenizer.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}

	var initErr error
	ortInitOnce.Do(func() {
		if cfg.OrtDLL != "" {
			ort.SetSharedLibraryPath(cfg.OrtDLL)
		}
		if !ort.IsInitialized() {
			initErr = ort.InitializeEnvironment()
		}
	})
	if initErr != nil {
		return nil, fmt.Errorf("init onnxruntime: %w", initErr)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	tk.WithTruncation(&tokenizer.TruncationParams{
		MaxLength: cfg.MaxSeqLen,
		Strategy:  tokenizer.LongestFirst,
	})

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no outputs", cfg.ModelPath)
	}
	inputNames := make([]string, len(inputs))
	for i, in := range inputs {
		inputNames[i] = in.Name
	}
	numLabels := cfg.NumLabels
	if dims := outputs[0].Dimensions; len(dims) > 0 {
		if last := dims[len(dims)-1]; last > 0 {
			numLabels = int(last)
		}
	}
	if numLabels <= 0 {
		return nil, errors.New("could not determine label count; set numLabels")
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath, inputNames, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c := &Classifier{
		cfg:        cfg,
		tk:         tk,
		session:    session,
		inputNames: inputNames,
		numLabels:  numLabels,
		maskToken:  detectMaskToken(tk),
	}
	if cfg.CacheDir != "" {
		cache, err := newScoreCache(cfg.CacheDir, cfg.ModelID)
		if err != nil {
			session.Destroy()
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// Close releases the ONNX session.
func (c *Classifier) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	return nil
}

// NumLabels returns the size of the model's output distribution.
func (c *Classifier) NumLabels() int {
	return c.numLabels
}

// MaskToken returns the tokenizer's mask token, or "" when the vocabulary
// has none and masked positions must be dropped instead.
func (c *Classifier) MaskToken() string {
	return c.maskToken
}

// Tokenize returns the non-special tokens of text with their byte spans.
func (c *Classifier) Tokenize(text string) ([]Token, error) {
	en, err := c.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	ids := en.GetIds()
	words := en.GetTokens()
	offsets := en.GetOffsets()
	special := en.GetSpecialTokenMask()
	out := make([]Token, 0, len(ids))
	for i := range ids {
		if i < len(special) && special[i] == 1 {
			continue
		}
		tok := Token{Text: words[i], ID: ids[i]}
		if i < len(offsets) && len(offsets[i]) == 2 {
			tok.Start = offsets[i][0]
			tok.End = offsets[i][1]
			if tok.End <= len(text) && tok.Start <= tok.End {
				tok.Text = text[tok.Start:tok.End]
			}
		}
		out = append(out, tok)
	}
	return out, nil
}

// Scores returns per-class logits for each text. Results for texts already
// seen by this model are served from the score cache.
func (c *Classifier) Scores(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))
	for i, text := range texts {
		if c.cache != nil {
			if vec, ok := c.cache.get(text); ok {
				out[i] = vec
				continue
			}
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]string, len(missing))
	for j, i := range missing {
		batch[j] = texts[i]
	}
	scores, err := c.run(batch)
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		out[i] = scores[j]
		if c.cache != nil {
			c.cache.put(texts[i], scores[j])
		}
	}
	return out, nil
}

// run tokenizes and scores one batch through the ONNX session.
func (c *Classifier) run(texts []string) ([][]float32, error) {
	encodings := make([]*tokenizer.Encoding, len(texts))
	maxLen := 1
	for i, text := range texts {
		en, err := c.tk.EncodeSingle(text, true)
		if err != nil {
			return nil, fmt.Errorf("encode text: %w", err)
		}
		encodings[i] = en
		if n := len(en.GetIds()); n > maxLen {
			maxLen = n
		}
	}

	n := len(texts)
	ids := make([]int64, n*maxLen)
	mask := make([]int64, n*maxLen)
	types := make([]int64, n*maxLen)
	for i, en := range encodings {
		row := i * maxLen
		enIds := en.GetIds()
		enMask := en.GetAttentionMask()
		enTypes := en.GetTypeIds()
		for j, id := range enIds {
			ids[row+j] = int64(id)
			mask[row+j] = 1
			if j < len(enMask) {
				mask[row+j] = int64(enMask[j])
			}
			if j < len(enTypes) {
				types[row+j] = int64(enTypes[j])
			}
		}
	}

	shape := ort.NewShape(int64(n), int64(maxLen))
	inputs := make([]ort.Value, 0, len(c.inputNames))
	for _, name := range c.inputNames {
		var data []int64
		switch name {
		case "input_ids":
			data = ids
		case "attention_mask":
			data = mask
		case "token_type_ids":
			data = types
		default:
			return nil, fmt.Errorf("unsupported model input %q", name)
		}
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, v := range inputs {
				v.Destroy()
			}
			return nil, fmt.Errorf("create %s tensor: %w", name, err)
		}
		inputs = append(inputs, tensor)
	}
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, errors.New("classifier is closed")
	}
	outputs := []ort.Value{nil}
	if err := c.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		outputs[0].Destroy()
		return nil, errors.New("model output is not float32")
	}
	defer logitsTensor.Destroy()

	data := logitsTensor.GetData()
	if len(data) != n*c.numLabels {
		return nil, fmt.Errorf("unexpected logits size %d for %d texts", len(data), n)
	}
	scores := make([][]float32, n)
	for i := range scores {
		row := make([]float32, c.numLabels)
		copy(row, data[i*c.numLabels:(i+1)*c.numLabels])
		scores[i] = row
	}
	return scores, nil
}

func detectMaskToken(tk *tokenizer.Tokenizer) string {
	for _, candidate := range []string{"[MASK]", "<mask>"} {
		if _, ok := tk.TokenToId(candidate); ok {
			return candidate
		}
	}
	return ""
}

package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Artifact file names expected inside the model directory. Everything except
// the training metadata is mandatory.
const (
	modelArtifact        = "model.json"
	scalerArtifact       = "scaler.json"
	featureNamesArtifact = "feature_names.json"
	encodersArtifact     = "label_encoders.json"
	metadataArtifact     = "training_metadata.json"
)

// ErrBundleNotLoaded is returned when scoring is attempted before all
// mandatory model artifacts are available.
var ErrBundleNotLoaded = errors.New("model bundle not loaded")

const modelSchema = `{
	"type": "object",
	"required": ["coefficients", "intercept"],
	"properties": {
		"model_type": {"type": "string"},
		"coefficients": {"type": "array", "items": {"type": "number"}, "minItems": 1},
		"intercept": {"type": "number"}
	}
}`

const scalerSchema = `{
	"type": "object",
	"required": ["mean", "scale"],
	"properties": {
		"mean": {"type": "array", "items": {"type": "number"}, "minItems": 1},
		"scale": {"type": "array", "items": {"type": "number"}, "minItems": 1}
	}
}`

// LabelEncoder maps the label set seen at training time to numeric codes, in
// class order.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Transform returns the code for a known label.
func (e *LabelEncoder) Transform(label string) (float64, error) {
	for i, class := range e.Classes {
		if class == label {
			return float64(i), nil
		}
	}
	return 0, fmt.Errorf("unseen label %q", label)
}

// Bundle is the immutable, process-lifetime set of trained artifacts. A bundle
// missing any mandatory artifact stays in the not-loaded state and refuses to
// score.
type Bundle struct {
	classifier   Classifier
	scaler       *Scaler
	featureNames []string
	encoders     map[string]*LabelEncoder
	metadata     map[string]any
	loaded       bool
}

// Loaded reports whether every mandatory artifact is present.
func (b *Bundle) Loaded() bool { return b != nil && b.loaded }

// FeatureNames returns the ordered feature name list the classifier expects.
func (b *Bundle) FeatureNames() []string { return b.featureNames }

// Metadata returns the optional free-form training metadata.
func (b *Bundle) Metadata() map[string]any { return b.metadata }

// ModelName reports the classifier type recorded in the model artifact.
func (b *Bundle) ModelName() string {
	if b == nil || b.classifier == nil {
		return ""
	}
	return b.classifier.Name()
}

// Encoder returns the categorical encoder for a feature, if one was trained.
func (b *Bundle) Encoder(featureName string) (*LabelEncoder, bool) {
	encoder, ok := b.encoders[featureName]
	return encoder, ok
}

// NewBundle assembles a bundle from already constructed parts. Used by tests
// and by callers that load artifacts through other means.
func NewBundle(classifier Classifier, scaler *Scaler, featureNames []string, encoders map[string]*LabelEncoder, metadata map[string]any) *Bundle {
	if encoders == nil {
		encoders = map[string]*LabelEncoder{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &Bundle{
		classifier:   classifier,
		scaler:       scaler,
		featureNames: featureNames,
		encoders:     encoders,
		metadata:     metadata,
		loaded:       classifier != nil && scaler != nil && len(featureNames) > 0,
	}
}

// LoadBundle reads the model artifacts from dir. A missing mandatory artifact
// yields a not-loaded bundle rather than an error so the service can start and
// report its state; a present-but-corrupt artifact is an error.
func LoadBundle(dir string, logger zerolog.Logger) (*Bundle, error) {
	log := logger.With().Str("component", "model_bundle").Logger()

	missing := []string{}
	for _, name := range []string{modelArtifact, scalerArtifact, featureNamesArtifact, encodersArtifact} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		log.Warn().Str("dir", dir).Str("missing", strings.Join(missing, ", ")).Msg("model artifacts missing, scoring disabled")
		return &Bundle{encoders: map[string]*LabelEncoder{}, metadata: map[string]any{}}, nil
	}

	var model logisticModel
	if err := readArtifact(dir, modelArtifact, modelSchema, &model); err != nil {
		return nil, err
	}

	var scaler Scaler
	if err := readArtifact(dir, scalerArtifact, scalerSchema, &scaler); err != nil {
		return nil, err
	}

	var featureNames []string
	if err := readArtifact(dir, featureNamesArtifact, "", &featureNames); err != nil {
		return nil, err
	}
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("artifact %s holds no feature names", featureNamesArtifact)
	}

	encoders := map[string]*LabelEncoder{}
	if err := readArtifact(dir, encodersArtifact, "", &encoders); err != nil {
		return nil, err
	}

	// Metadata is optional; substitute an empty map when the file is absent.
	metadata := map[string]any{}
	if raw, err := os.ReadFile(filepath.Join(dir, metadataArtifact)); err == nil {
		if err := json.Unmarshal(raw, &metadata); err != nil {
			log.Warn().Err(err).Msg("training metadata unreadable, continuing without it")
			metadata = map[string]any{}
		}
	}

	bundle := NewBundle(&model, &scaler, featureNames, encoders, metadata)
	log.Info().Int("features", len(featureNames)).Str("model", bundle.ModelName()).Msg("model bundle loaded")
	return bundle, nil
}

func readArtifact(dir, name, schema string, target any) error {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", name, err)
	}

	if schema != "" {
		compiled, err := jsonschema.CompileString(name, schema)
		if err != nil {
			return fmt.Errorf("invalid schema for %s: %w", name, err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("artifact %s is not valid JSON: %w", name, err)
		}
		if err := compiled.Validate(doc); err != nil {
			return fmt.Errorf("artifact %s failed validation: %w", name, err)
		}
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", name, err)
	}
	return nil
}

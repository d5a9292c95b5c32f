package app

import (
	"context"
	"math"
	"sort"
	"time"

	"causalimpact/adapters/rng"
	"causalimpact/domain/core"
	"causalimpact/domain/dataset"
	"causalimpact/domain/impact"
	"causalimpact/internal"
	"causalimpact/internal/config"
	internalDataset "causalimpact/internal/dataset"
	"causalimpact/internal/errors"
	"causalimpact/internal/inference"
	"causalimpact/internal/model"
	"causalimpact/internal/period"
	"causalimpact/internal/standardize"
	"causalimpact/ports"
)

// Model argument keys
const (
	ArgStandardize = "standardize"
	ArgNSims       = "n_sims"
	ArgSeed        = "seed"
)

// Validation messages
const (
	msgAlphaType   = "alpha must be of type float."
	msgAlphaRange  = "alpha must range between 0 (zero) and 1 (one) inclusive."
	msgStandardize = "Standardize argument must be of type bool."
	msgNSims       = "n_sims argument must be a positive int."
	msgSeed        = "seed argument must be of type int."
	msgUnknownArg  = "%s is not a recognized model argument."
)

// ImpactService runs causal impact analyses
type ImpactService struct {
	config config.AnalysisConfig
	logger *internal.Logger
	engine *inference.Engine
}

// AnalysisRequest is one analysis. Data, the periods, Alpha, ModelArgs values
// and Model are accepted loosely typed and validated in a fixed order.
type AnalysisRequest struct {
	Data       interface{}
	PrePeriod  interface{}
	PostPeriod interface{}
	// ModelArgs recognizes "standardize" (bool), "n_sims" (int) and "seed" (int)
	ModelArgs map[string]interface{}
	// Alpha defaults to the configured alpha when nil
	Alpha interface{}
	// Model is an optional caller-built ports.StructuralModel
	Model interface{}
}

// Result holds every artifact of an analysis. It is built once and never
// modified by the service afterwards.
type Result struct {
	ID core.AnalysisID `json:"id"`

	Data       *dataset.Frame `json:"-"`
	PrePeriod  impact.Period  `json:"pre_period"`
	PostPeriod impact.Period  `json:"post_period"`
	PreData    *dataset.Frame `json:"-"`
	PostData   *dataset.Frame `json:"-"`

	// Normalized slices, parameters and MuSig are nil when standardization is disabled
	NormedPreData         *dataset.Frame      `json:"-"`
	NormedPostData        *dataset.Frame      `json:"-"`
	StandardizationParams *standardize.Params `json:"-"`
	MuSig                 *impact.MuSig       `json:"mu_sig,omitempty"`

	ModelArgs    impact.ModelArgs      `json:"model_args"`
	Alpha        float64               `json:"alpha"`
	Model        ports.StructuralModel `json:"-"`
	TrainedModel ports.TrainedModel    `json:"-"`
	Inferences   *impact.Inferences    `json:"inferences"`
	PValue       float64               `json:"p_value"`
	NSims        int                   `json:"n_sims"`
	RuntimeMs    int64                 `json:"runtime_ms"`
}

// Summary condenses the post-period effect
func (r *Result) Summary() impact.Summary {
	return r.Inferences.Summarize(r.PostPeriod, r.Alpha, r.PValue)
}

// NewImpactService creates a service; cfg supplies the request defaults
func NewImpactService(cfg config.AnalysisConfig, logger *internal.Logger, rngPort ports.RNGPort) *ImpactService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if rngPort == nil {
		rngPort = rng.NewSeededAdapter()
	}
	return &ImpactService{
		config: cfg,
		logger: logger,
		engine: inference.NewEngine(logger, rngPort, cfg.SimWorkers),
	}
}

// Analyze runs an analysis with the default configuration
func Analyze(ctx context.Context, req AnalysisRequest) (*Result, error) {
	return NewImpactService(config.DefaultAnalysisConfig(), nil, nil).Analyze(ctx, req)
}

// Analyze validates the request, fits the model on the pre-period and
// estimates the post-period effect. Every validation runs before fitting.
func (s *ImpactService) Analyze(ctx context.Context, req AnalysisRequest) (*Result, error) {
	startTime := time.Now()

	if isEmpty(req.Data) {
		return nil, errors.EmptyInput("data")
	}
	if isEmpty(req.PrePeriod) {
		return nil, errors.EmptyInput("pre_period")
	}
	if isEmpty(req.PostPeriod) {
		return nil, errors.EmptyInput("post_period")
	}

	data, err := internalDataset.Normalize(req.Data)
	if err != nil {
		return nil, err
	}
	pre, post, err := period.Validate(req.PrePeriod, req.PostPeriod, data)
	if err != nil {
		return nil, err
	}
	alpha, err := s.parseAlpha(req.Alpha)
	if err != nil {
		return nil, err
	}
	args, err := s.parseModelArgs(req.ModelArgs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:         core.NewAnalysisID(),
		Data:       data,
		PrePeriod:  pre,
		PostPeriod: post,
		PreData:    data.Slice(pre.Start, pre.End),
		PostData:   data.Slice(post.Start, post.End),
		ModelArgs:  args,
		Alpha:      alpha,
		NSims:      args.NSims,
	}
	if err := internalDataset.CheckTrainingResponse(result.PreData); err != nil {
		return nil, err
	}
	logger := s.logger.WithField("analysis_id", result.ID.String())

	modelPre, modelPost := result.PreData, result.PostData
	if args.Standardize {
		normedPre, params, err := standardize.Standardize(result.PreData)
		if err != nil {
			return nil, errors.Wrap(err, "standardization failed")
		}
		normedPost, err := params.Apply(result.PostData)
		if err != nil {
			return nil, errors.Wrap(err, "standardization failed")
		}
		result.NormedPreData, result.NormedPostData = normedPre, normedPost
		result.StandardizationParams = params
		result.MuSig = &impact.MuSig{Mu: params.Mean[0], Sig: params.Std[0]}
		modelPre, modelPost = normedPre, normedPost
	}

	if req.Model != nil {
		result.Model, err = model.Validate(req.Model, data.NumCovariates(), pre.Len())
	} else {
		result.Model, err = model.Build(modelPre)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("analysis started: %s rows=%d covariates=%d n_sims=%d",
		period.String(pre, post), data.Rows(), data.NumCovariates(), args.NSims)

	out, err := s.engine.Run(ctx, inference.Input{
		Model:         result.Model,
		PreData:       result.PreData,
		PostData:      result.PostData,
		ModelPostData: modelPost,
		MuSig:         result.MuSig,
		Alpha:         alpha,
		NSims:         args.NSims,
		Seed:          args.Seed,
	})
	if err != nil {
		logger.Warn("analysis failed: %v", err)
		return nil, err
	}

	result.TrainedModel = out.Trained
	result.Inferences = out.Inferences
	result.PValue = out.PValue
	result.RuntimeMs = time.Since(startTime).Milliseconds()

	logger.WithField("p_value", out.PValue).Info("analysis completed in %dms", result.RuntimeMs)
	return result, nil
}

func (s *ImpactService) parseAlpha(raw interface{}) (float64, error) {
	var alpha float64
	switch v := raw.(type) {
	case nil:
		alpha = s.config.Alpha
	case float64:
		alpha = v
	case float32:
		alpha = float64(v)
	default:
		return 0, errors.TypeMismatch(msgAlphaType)
	}
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return 0, errors.TypeMismatch(msgAlphaRange)
	}
	return alpha, nil
}

// parseModelArgs applies args over the configured defaults; keys are checked in sorted order
func (s *ImpactService) parseModelArgs(args map[string]interface{}) (impact.ModelArgs, error) {
	out := impact.ModelArgs{
		Standardize: s.config.Standardize,
		NSims:       s.config.NSims,
		Seed:        s.config.Seed,
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := args[key]
		switch key {
		case ArgStandardize:
			b, ok := value.(bool)
			if !ok {
				return impact.ModelArgs{}, errors.TypeMismatch(msgStandardize)
			}
			out.Standardize = b
		case ArgNSims:
			n, ok := asInt(value)
			if !ok || n <= 0 {
				return impact.ModelArgs{}, errors.TypeMismatch(msgNSims)
			}
			out.NSims = int(n)
		case ArgSeed:
			n, ok := asInt(value)
			if !ok {
				return impact.ModelArgs{}, errors.TypeMismatch(msgSeed)
			}
			out.Seed = n
		default:
			return impact.ModelArgs{}, errors.Newf(errors.CodeTypeMismatch, msgUnknownArg, key)
		}
	}
	return out, nil
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

// isEmpty reports an absent value, including typed nil pointers and slices
func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *dataset.Frame:
		return x == nil
	case []int:
		return x == nil
	case []string:
		return x == nil
	case []interface{}:
		return x == nil
	case [][]float64:
		return x == nil
	case []float64:
		return x == nil
	}
	return false
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/history"
	"github.com/diabetes-prediction-engine/internal/service"
	"github.com/diabetes-prediction-engine/pkg/archive"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Predictor runs one evaluation.
type Predictor interface {
	Predict(ctx context.Context, req *domain.EvaluationRequest) (*domain.PredictionResponse, error)
}

// Tools holds the services behind the MCP tools.
type Tools struct {
	predictor  Predictor
	classifier *service.ClinicalClassifier
	ml         *service.MLIntegrationService
	history    history.Store
	archive    archive.Archiver
	logger     *logrus.Logger
}

// NewTools creates the tool set. sink may be nil, which disables
// export_evaluations.
func NewTools(predictor Predictor, ml *service.MLIntegrationService, store history.Store, sink archive.Archiver, logger *logrus.Logger) *Tools {
	return &Tools{
		predictor:  predictor,
		classifier: service.NewClinicalClassifier(),
		ml:         ml,
		history:    store,
		archive:    sink,
		logger:     logger,
	}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "predict_diabetes_type",
		Description: "Predict the diabetes subtype for one patient snapshot. Returns the predicted type, its probability, clinical bands, an explanation and recommendations in Spanish.",
	}, t.handlePredict)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_vitals",
		Description: "Band blood pressure, cholesterol, insulin, glucose and age into clinical categories without running a prediction.",
	}, t.handleClassifyVitals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scorer_status",
		Description: "Report whether the remote ML scorer is enabled and reachable.",
	}, t.handleScorerStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_evaluations",
		Description: "List stored evaluations, newest first, optionally filtered by patient or predicted type.",
	}, t.handleListEvaluations)

	if t.archive != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "export_evaluations",
			Description: "Write a JSON export of the whole evaluation history and return where it was stored.",
		}, t.handleExport)
	}

	t.logger.Info("Registered MCP tools")
}

// PredictInput is one patient snapshot. Numbers are optional except age,
// glucose and insulin.
type PredictInput struct {
	PatientID *int64 `json:"patient_id,omitempty" jsonschema:"stored patient to link the evaluation to"`

	Age                    *float64 `json:"edad,omitempty" jsonschema:"age in years, 0 to 120"`
	GlucoseLevels          *float64 `json:"nivelesGlucosa,omitempty" jsonschema:"fasting glucose in mg/dL, 0 to 1000"`
	InsulinLevels          *float64 `json:"nivelesInsulina,omitempty" jsonschema:"insulin in uU/mL, 0 to 500"`
	BMI                    *float64 `json:"indiceMasaCorporal,omitempty" jsonschema:"body mass index, 10 to 60"`
	BloodPressure          *float64 `json:"presionArterial,omitempty" jsonschema:"systolic pressure in mmHg, 60 to 250"`
	CholesterolLevels      *float64 `json:"nivelesColesterol,omitempty"`
	WaistCircumference     *float64 `json:"circunferenciaCintura,omitempty"`
	PregnancyWeightGain    *float64 `json:"aumentoPesoEmbarazo,omitempty"`
	PancreaticHealth       *float64 `json:"saludPancreatica,omitempty"`
	PulmonaryFunction      *float64 `json:"funcionPulmonar,omitempty"`
	NeurologicalAssessment *float64 `json:"evaluacionesNeurologicas,omitempty"`
	DigestiveEnzymeLevels  *float64 `json:"nivelesEnzimasDigestivas,omitempty"`
	BirthWeight            *float64 `json:"pesoNacimiento,omitempty"`

	GeneticMarkers          string `json:"marcadoresGeneticos,omitempty"`
	Autoantibodies          string `json:"autoanticuerpos,omitempty"`
	FamilyHistory           string `json:"antecedentesFamiliares,omitempty"`
	EnvironmentalFactors    string `json:"factoresAmbientales,omitempty"`
	Ethnicity               string `json:"etnicidad,omitempty"`
	DietaryHabits           string `json:"habitosAlimenticios,omitempty"`
	GlucoseToleranceTest    string `json:"pruebaToleranciaGlucosa,omitempty"`
	LiverFunctionTests      string `json:"pruebasFuncionHepatica,omitempty"`
	CysticFibrosisDiagnosis string `json:"diagnosticoFibrosisQuistica,omitempty"`
	SteroidUse              string `json:"usoEsteroides,omitempty"`
	GeneticTesting          string `json:"pruebasGeneticas,omitempty"`
	PregnancyHistory        string `json:"historialEmbarazos,omitempty"`
	PreviousGestational     string `json:"diabetesGestacionalPrevia,omitempty"`
	PCOSHistory             string `json:"historialPcos,omitempty"`
	SmokingStatus           string `json:"estadoTabaquismo,omitempty"`
	EarlyOnsetSymptoms      string `json:"sintomasInicioTemprano,omitempty"`
	SocioeconomicFactors    string `json:"factoresSocioeconomicos,omitempty"`
	AlcoholConsumption      string `json:"consumoAlcohol,omitempty"`
	PhysicalActivity        string `json:"actividadFisica,omitempty"`
	UrineTest               string `json:"pruebaOrina,omitempty"`
}

// Request converts the tool input into an evaluation request.
func (in PredictInput) Request() *domain.EvaluationRequest {
	req := &domain.EvaluationRequest{
		Age:                    domain.NumberFromPtr(in.Age),
		GlucoseLevels:          domain.NumberFromPtr(in.GlucoseLevels),
		InsulinLevels:          domain.NumberFromPtr(in.InsulinLevels),
		BMI:                    domain.NumberFromPtr(in.BMI),
		BloodPressure:          domain.NumberFromPtr(in.BloodPressure),
		CholesterolLevels:      domain.NumberFromPtr(in.CholesterolLevels),
		WaistCircumference:     domain.NumberFromPtr(in.WaistCircumference),
		PregnancyWeightGain:    domain.NumberFromPtr(in.PregnancyWeightGain),
		PancreaticHealth:       domain.NumberFromPtr(in.PancreaticHealth),
		PulmonaryFunction:      domain.NumberFromPtr(in.PulmonaryFunction),
		NeurologicalAssessment: domain.NumberFromPtr(in.NeurologicalAssessment),
		DigestiveEnzymeLevels:  domain.NumberFromPtr(in.DigestiveEnzymeLevels),
		BirthWeight:            domain.NumberFromPtr(in.BirthWeight),

		GeneticMarkers:          in.GeneticMarkers,
		Autoantibodies:          in.Autoantibodies,
		FamilyHistory:           in.FamilyHistory,
		EnvironmentalFactors:    in.EnvironmentalFactors,
		Ethnicity:               in.Ethnicity,
		DietaryHabits:           in.DietaryHabits,
		GlucoseToleranceTest:    in.GlucoseToleranceTest,
		LiverFunctionTests:      in.LiverFunctionTests,
		CysticFibrosisDiagnosis: in.CysticFibrosisDiagnosis,
		SteroidUse:              in.SteroidUse,
		GeneticTesting:          in.GeneticTesting,
		PregnancyHistory:        in.PregnancyHistory,
		PreviousGestational:     in.PreviousGestational,
		PCOSHistory:             in.PCOSHistory,
		SmokingStatus:           in.SmokingStatus,
		EarlyOnsetSymptoms:      in.EarlyOnsetSymptoms,
		SocioeconomicFactors:    in.SocioeconomicFactors,
		AlcoholConsumption:      in.AlcoholConsumption,
		PhysicalActivity:        in.PhysicalActivity,
		UrineTest:               in.UrineTest,
	}
	if in.PatientID != nil && *in.PatientID > 0 {
		req.Patient = &domain.PatientRef{ID: *in.PatientID}
	}
	return req
}

// PredictOutput is the structured prediction result.
type PredictOutput struct {
	DiabetesType    string            `json:"tipoDiabetes"`
	DiabetesTypeEs  string            `json:"tipoDiabetesEs"`
	Probability     float64           `json:"probabilidad"`
	Classifications map[string]string `json:"clasificaciones"`
	Explanation     string            `json:"explicacion"`
	Recommendations string            `json:"recomendacionesPersonalizadas"`
	Provenance      string            `json:"provenance"`
	PredictedAt     string            `json:"fechaPrediccion"`
}

func (t *Tools) handlePredict(ctx context.Context, req *mcp.CallToolRequest, in PredictInput) (*mcp.CallToolResult, PredictOutput, error) {
	t.logger.WithField("tool", "predict_diabetes_type").Info("Tool invoked")

	resp, err := t.predictor.Predict(ctx, in.Request())
	if err != nil {
		var validation *domain.ValidationErrors
		if errors.As(err, &validation) {
			return errorResult("Datos de entrada inválidos", err), PredictOutput{}, nil
		}
		t.logger.WithError(err).Error("Prediction tool failed")
		return errorResult("No se pudo completar la predicción", err), PredictOutput{}, nil
	}

	out := PredictOutput{
		DiabetesType:    resp.DiabetesType,
		DiabetesTypeEs:  resp.DiabetesTypeEs,
		Probability:     resp.Probability,
		Classifications: bandsOf(resp.Classifications),
		Explanation:     resp.Explanation,
		Recommendations: resp.Recommendations,
		Provenance:      string(resp.Provenance),
		PredictedAt:     resp.PredictedAt.UTC().Format(time.RFC3339),
	}

	return textResult(fmt.Sprintf("%s (%s): probabilidad %.1f%%\n\n%s\n\n%s",
		out.DiabetesTypeEs, out.DiabetesType, out.Probability*100,
		out.Explanation, out.Recommendations)), out, nil
}

// VitalsInput holds the banded measurements.
type VitalsInput struct {
	Age               *float64 `json:"edad,omitempty"`
	GlucoseLevels     *float64 `json:"nivelesGlucosa,omitempty"`
	InsulinLevels     *float64 `json:"nivelesInsulina,omitempty"`
	BloodPressure     *float64 `json:"presionArterial,omitempty"`
	CholesterolLevels *float64 `json:"nivelesColesterol,omitempty"`
}

// VitalsOutput maps indicator names to band labels.
type VitalsOutput struct {
	Classifications map[string]string `json:"clasificaciones"`
}

func (t *Tools) handleClassifyVitals(ctx context.Context, req *mcp.CallToolRequest, in VitalsInput) (*mcp.CallToolResult, VitalsOutput, error) {
	bands := t.classifier.Classify(&domain.EvaluationRequest{
		Age:               domain.NumberFromPtr(in.Age),
		GlucoseLevels:     domain.NumberFromPtr(in.GlucoseLevels),
		InsulinLevels:     domain.NumberFromPtr(in.InsulinLevels),
		BloodPressure:     domain.NumberFromPtr(in.BloodPressure),
		CholesterolLevels: domain.NumberFromPtr(in.CholesterolLevels),
	})

	out := VitalsOutput{Classifications: bandsOf(bands)}
	if len(out.Classifications) == 0 {
		return errorResult("Sin mediciones", errors.New("at least one measurement is required")), out, nil
	}

	lines := make([]string, 0, len(domain.Indicators))
	for _, indicator := range domain.Indicators {
		if band, ok := bands[indicator]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", indicator, band))
		}
	}
	return textResult(strings.Join(lines, "\n")), out, nil
}

// ScorerStatusInput takes no arguments.
type ScorerStatusInput struct{}

// ScorerStatusOutput describes the remote scorer.
type ScorerStatusOutput struct {
	Enabled      bool   `json:"enabled"`
	Available    bool   `json:"available"`
	BaseURL      string `json:"baseUrl"`
	BreakerState string `json:"breakerState"`
	LastError    string `json:"lastError,omitempty"`
	CheckedAt    string `json:"checkedAt"`
}

func (t *Tools) handleScorerStatus(ctx context.Context, req *mcp.CallToolRequest, _ ScorerStatusInput) (*mcp.CallToolResult, ScorerStatusOutput, error) {
	status, err := t.ml.Status(ctx)
	if err != nil {
		return errorResult("No se pudo consultar el servicio ML", err), ScorerStatusOutput{}, nil
	}

	out := ScorerStatusOutput{
		Enabled:      status.Enabled,
		Available:    status.Available,
		BaseURL:      status.Client.BaseURL,
		BreakerState: status.Client.BreakerState,
		LastError:    status.Client.Availability.LastError,
		CheckedAt:    status.CheckedAt.UTC().Format(time.RFC3339),
	}

	mode := "simulado (reglas)"
	if out.Enabled && out.Available {
		mode = "remoto"
	}
	return textResult(fmt.Sprintf("Servicio ML habilitado: %t, disponible: %t, modo: %s", out.Enabled, out.Available, mode)), out, nil
}

// ListEvaluationsInput filters the history listing.
type ListEvaluationsInput struct {
	PatientID    *int64 `json:"patient_id,omitempty"`
	DiabetesType string `json:"diabetes_type,omitempty" jsonschema:"canonical English type name"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// EvaluationSummary is one listed evaluation.
type EvaluationSummary struct {
	ID           int64   `json:"id"`
	Reference    string  `json:"reference"`
	PatientID    int64   `json:"patient_id,omitempty"`
	DiabetesType string  `json:"diabetes_type"`
	Probability  float64 `json:"probability"`
	Provenance   string  `json:"provenance"`
	EvaluatedAt  string  `json:"evaluated_at"`
}

// ListEvaluationsOutput is a page of evaluations.
type ListEvaluationsOutput struct {
	Count       int                 `json:"count"`
	Evaluations []EvaluationSummary `json:"evaluations"`
}

func (t *Tools) handleListEvaluations(ctx context.Context, req *mcp.CallToolRequest, in ListEvaluationsInput) (*mcp.CallToolResult, ListEvaluationsOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		records []*history.Record
		err     error
	)
	switch {
	case in.PatientID != nil:
		records, err = t.history.ListByPatient(ctx, *in.PatientID, limit, offset)
	case in.DiabetesType != "":
		if !domain.IsKnownDiabetesType(in.DiabetesType) {
			return errorResult("Tipo de diabetes desconocido", fmt.Errorf("%q", in.DiabetesType)), ListEvaluationsOutput{}, nil
		}
		records, err = t.history.ListByType(ctx, in.DiabetesType, limit, offset)
	default:
		records, err = t.history.List(ctx, limit, offset)
	}
	if err != nil {
		t.logger.WithError(err).Error("Failed to list evaluations")
		return errorResult("No se pudo consultar el historial", err), ListEvaluationsOutput{}, nil
	}

	out := ListEvaluationsOutput{Evaluations: make([]EvaluationSummary, 0, len(records))}
	var text strings.Builder
	for _, r := range records {
		summary := EvaluationSummary{
			ID:           r.ID,
			Reference:    r.Reference,
			DiabetesType: r.DiabetesType,
			Probability:  r.Probability,
			Provenance:   string(r.Provenance),
			EvaluatedAt:  r.EvaluatedAt.UTC().Format(time.RFC3339),
		}
		if r.PatientID != nil {
			summary.PatientID = *r.PatientID
		}
		out.Evaluations = append(out.Evaluations, summary)
		fmt.Fprintf(&text, "#%d %s %s (%.1f%%)\n", r.ID, summary.EvaluatedAt, r.DiabetesType, r.Probability*100)
	}
	out.Count = len(out.Evaluations)

	if out.Count == 0 {
		return textResult("No hay evaluaciones registradas"), out, nil
	}
	return textResult(fmt.Sprintf("%d evaluaciones:\n%s", out.Count, text.String())), out, nil
}

// ExportInput takes no arguments.
type ExportInput struct{}

// ExportOutput tells where an export was written.
type ExportOutput struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Count    int    `json:"count"`
}

func (t *Tools) handleExport(ctx context.Context, req *mcp.CallToolRequest, _ ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
	result, err := history.ArchiveExport(ctx, t.history, t.archive, t.logger)
	if err != nil {
		t.logger.WithError(err).Error("Export tool failed")
		return errorResult("No se pudo exportar el historial", err), ExportOutput{}, nil
	}

	out := ExportOutput{Key: result.Key, Location: result.Location, Count: result.Count}
	return textResult(fmt.Sprintf("%d evaluaciones exportadas a %s", out.Count, out.Location)), out, nil
}

func bandsOf(c domain.ClinicalClassification) map[string]string {
	out := make(map[string]string, len(c))
	for indicator, band := range c {
		out[string(indicator)] = band
	}
	return out
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult creates a standardized error result for tool calls
func errorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}

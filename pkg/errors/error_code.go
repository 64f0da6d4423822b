package errors

import "strconv"

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-149)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidWeights       ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109

	// Schema errors (150-199)
	ErrCodeSchema          ErrorCode = 150
	ErrCodeMissingColumn   ErrorCode = 151
	ErrCodeUnorderedSeries ErrorCode = 152

	// Data errors (200-299)
	ErrCodeDataNotFound            ErrorCode = 200
	ErrCodeQueryFailed             ErrorCode = 202
	ErrCodeNoDataFound             ErrorCode = 204
	ErrCodeInsufficientDailyPoints ErrorCode = 210
	ErrCodeInsufficientTrainRows   ErrorCode = 211

	// Model errors (300-399)
	ErrCodeSingularMatrix ErrorCode = 300
	ErrCodeModelFit       ErrorCode = 301

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
	ErrCodeEmptyPayload          ErrorCode = 705

	// Report errors (800-899)
	ErrCodeReportFailed ErrorCode = 800
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                 "unknown",
	ErrCodeInvalidParameter:        "invalid_parameter",
	ErrCodeInvalidConfiguration:    "invalid_configuration",
	ErrCodeInvalidWeights:          "invalid_weights",
	ErrCodeInvalidPeriod:           "invalid_period",
	ErrCodeMissingParameter:        "missing_parameter",
	ErrCodeSchema:                  "schema",
	ErrCodeMissingColumn:           "missing_column",
	ErrCodeUnorderedSeries:         "unordered_series",
	ErrCodeDataNotFound:            "data_not_found",
	ErrCodeQueryFailed:             "query_failed",
	ErrCodeNoDataFound:             "no_data_found",
	ErrCodeInsufficientDailyPoints: "insufficient_daily_points",
	ErrCodeInsufficientTrainRows:   "insufficient_train_rows",
	ErrCodeSingularMatrix:          "singular_matrix",
	ErrCodeModelFit:                "model_fit",
	ErrCodeMarketDataFetchFailed:   "market_data_fetch_failed",
	ErrCodeMarketDataWriteFailed:   "market_data_write_failed",
	ErrCodeMarketDataParseFailed:   "market_data_parse_failed",
	ErrCodeInvalidTimespan:         "invalid_timespan",
	ErrCodeInvalidProvider:         "invalid_provider",
	ErrCodeEmptyPayload:            "empty_payload",
	ErrCodeReportFailed:            "report_failed",
}

// String returns the snake_case name of the code, or "code_<n>" for unnamed codes.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "code_" + strconv.Itoa(int(c))
}

// Category groups codes by the hundreds range they live in.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryValidation Category = "validation"
	CategorySchema     Category = "schema"
	CategoryData       Category = "data"
	CategoryModel      Category = "model"
	CategoryMarketData Category = "market_data"
	CategoryReport     Category = "report"
)

// Category returns the range the code belongs to.
func (c ErrorCode) Category() Category {
	switch {
	case c >= 100 && c < 150:
		return CategoryValidation
	case c >= 150 && c < 200:
		return CategorySchema
	case c >= 200 && c < 300:
		return CategoryData
	case c >= 300 && c < 400:
		return CategoryModel
	case c >= 700 && c < 800:
		return CategoryMarketData
	case c >= 800 && c < 900:
		return CategoryReport
	default:
		return CategoryGeneral
	}
}

package pipeline

// Decision is the verdict of the dedup guard for one notification.
// Exactly one gate produces it per invocation; it is never retried
// within the same call.
type Decision int

const (
	// Proceed means every gate passed and the pipeline should run.
	Proceed Decision = iota

	// SkipConfigError means a required setting is missing; the
	// notification is dropped without scheduling a retry.
	SkipConfigError

	// SkipSelfLoop means source and destination bucket are the same,
	// so processing would re-trigger on its own output.
	SkipSelfLoop

	// SkipAlreadyProcessedName means the object name marks it as an
	// output artifact already.
	SkipAlreadyProcessedName

	// SkipWrongType means the content type is not accepted.
	SkipWrongType

	// SkipAlreadyOutput means the output object already exists in the
	// destination bucket. This is the durable, authoritative signal.
	SkipAlreadyOutput

	// SkipDuplicateDelivery means the same delivery identity was seen
	// within the suppression window. Best effort only.
	SkipDuplicateDelivery
)

// String returns the decision name used in logs and metrics labels.
func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case SkipConfigError:
		return "skip_config_error"
	case SkipSelfLoop:
		return "skip_self_loop"
	case SkipAlreadyProcessedName:
		return "skip_already_processed_name"
	case SkipWrongType:
		return "skip_wrong_type"
	case SkipAlreadyOutput:
		return "skip_already_output"
	case SkipDuplicateDelivery:
		return "skip_duplicate_delivery"
	default:
		return "unknown"
	}
}

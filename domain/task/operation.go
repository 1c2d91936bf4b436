package task

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue system.
const (
	OperationEnrichBatch Operation = "firmint.batch.enrich"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

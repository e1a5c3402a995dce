// Package therapy drives tumour population models across treatment
// schedules and implements the adaptive dosing strategies.
//
// A [Model] owns a parameter set, an initial state, and a trajectory
// [Record]. [Model.Simulate] integrates the model interval by interval,
// holding the drug concentration constant within each interval and
// carrying state across boundaries. The dosing strategies
// ([DoseModulation], [DoseSkipping], [Intermittent]) are feedback loops
// over repeated single-interval Simulate calls; [PassageAssay] simulates
// serial passaging with reseeding between cycles.
//
// Integration failures never panic: after every Simulate call the
// model's Success flag and retained Diagnostic describe the outcome.
package therapy

package models

// Sample is one (scene, segment) pairing presented to the pipeline. It is
// derived per experiment and is transient; it is never persisted on its own.
// Constraints carries the dataset/scene-level partial override; the
// orchestrator normalizes it against run-level defaults into a
// ConstraintSet before any stage runs (§4.1, §4.10 step 1).
type Sample struct {
	SampleID    string            `json:"sampleId"`
	SceneID     string            `json:"sceneId"`
	T           int               `json:"t"`
	SourceText  string            `json:"sourceText"`
	Context     string            `json:"context"`
	Constraints ConstraintPartial `json:"constraints"`
	Reference   string            `json:"reference,omitempty"`
}

package models

// Entity is a named thing referenced by a line of dialogue or narration.
type Entity struct {
	Name string `json:"name"`
	Desc string `json:"desc,omitempty"`
}

// State is the set of extracted facts fed to the stateful translator. It is
// built per sample only when the active condition requires it (A1, A3).
type State struct {
	Utterance    string   `json:"utterance"`
	Speaker      string   `json:"speaker"`
	Addressee    string   `json:"addressee"`
	Entities     []Entity `json:"entities"`
	CoreMeaning  string   `json:"coreMeaning"`
	Implicature  string   `json:"implicature"`
}

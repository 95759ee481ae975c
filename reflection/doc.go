// Package reflection implements the correction-to-lesson pipeline: detecting
// that a message corrects a prior mistake, deriving per-agent lessons from
// the correction, deduplicating them, and handing them off for persistence.
//
// Detection has two layers: a pure keyword scan over trailing message pairs
// (DetectPattern) and a model-backed classifier (Classifier.IsCorrection)
// that fails closed. Lesson generation fans out over candidate agents in
// parallel; agents judged not applicable, or whose model call fails,
// contribute no lesson. Deduplication conservatively keeps every lesson when
// the model's answer cannot be parsed, so a lesson is never silently lost.
package reflection

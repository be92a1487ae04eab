// Package domain holds the entities shared by the detector: uploaded items,
// candidate URLs returned by reverse image search, per-URL analysis records and
// the overall processing result. The types carry no infrastructure concerns.
package domain

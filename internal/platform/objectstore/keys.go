package objectstore

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Bucket names, bit-exact per §6.
const (
	BucketIngest       = "ingest"
	BucketVoiceClones  = "voice-clones"
	BucketPresentations = "presentations"
	BucketOutput       = "output"
)

// JobUUID derives the job's addressing nonce from its source artifact key,
// per §6: "basename(source_artifact_key) with extension stripped". The
// source key is of the form "{bucket}/{uuid}.{ext}" or a bare
// "{uuid}.{ext}"; either way only the final path segment matters.
func JobUUID(sourceArtifactKey string) string {
	base := path.Base(sourceArtifactKey)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// NotesKey returns the per-slide speaker-notes key. Deliberately keyed by
// the numeric job id, not job_uuid (see §6 asymmetry note).
func NotesKey(jobID uint64, slideIndex int) string {
	return fmt.Sprintf("%d/notes/slide_%d.txt", jobID, slideIndex)
}

// AudioKey returns the per-slide synthesized audio key, keyed by job_uuid.
func AudioKey(jobUUID string, slideIndex int) string {
	return fmt.Sprintf("%s/audio/slide_%d.wav", jobUUID, slideIndex)
}

// ImagesPrefix returns the rendered-slide-images prefix for a job_uuid.
func ImagesPrefix(jobUUID string) string {
	return fmt.Sprintf("%s/images/", jobUUID)
}

// AudioPrefix returns the per-job audio prefix, keyed by job id (retention sweep step 3).
func AudioPrefix(jobID uint64) string {
	return fmt.Sprintf("%d/audio/", jobID)
}

// NotesPrefix returns the per-job notes prefix, keyed by job id (retention sweep step 3).
func NotesPrefix(jobID uint64) string {
	return fmt.Sprintf("%d/notes/", jobID)
}

// JobUUIDPrefix returns the catch-all prefix rooted at job_uuid (retention sweep step 4).
func JobUUIDPrefix(jobUUID string) string {
	return jobUUID + "/"
}

// OutputKey returns the final muxed video's key, keyed by job id.
func OutputKey(jobID uint64) string {
	return strconv.FormatUint(jobID, 10) + ".mp4"
}

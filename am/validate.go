package am

import "github.com/teranos/dex/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Vault.Path == "" {
		return errors.New("vault.path cannot be empty")
	}

	if c.Dedup.SimilarityThreshold <= 0 || c.Dedup.SimilarityThreshold > 1 {
		return errors.Newf("dedup.similarity_threshold must be in (0, 1], got %f", c.Dedup.SimilarityThreshold)
	}
	if c.Dedup.MergeThreshold < c.Dedup.SimilarityThreshold || c.Dedup.MergeThreshold > 1 {
		return errors.Newf("dedup.merge_threshold must be in [similarity_threshold, 1], got %f", c.Dedup.MergeThreshold)
	}
	if c.Dedup.MaxMatches <= 0 {
		return errors.Newf("dedup.max_matches must be > 0, got %d", c.Dedup.MaxMatches)
	}

	if c.Tasks.DefaultSection == "" {
		return errors.New("tasks.default_section cannot be empty")
	}

	if c.Meetings.HistoryLimit <= 0 {
		return errors.Newf("meetings.history_limit must be > 0, got %d", c.Meetings.HistoryLimit)
	}

	// 0 = resync on every event
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}

package schema

// WithDefaults returns a copy of d with omitted fields filled in.
func (d Database) WithDefaults() Database {
	if d.Version == 0 {
		d.Version = DefaultVersion
	}
	return d
}

// Validate checks that names are present and unique.
func (d Database) Validate() error {
	if d.Name == "" {
		return newLoadError(ErrCodeInvalidName, "database name is required")
	}
	if d.Version < 1 {
		return newLoadError(ErrCodeInvalidVersion, "database %q: version must be at least 1, got %d", d.Name, d.Version)
	}

	seen := make(map[string]bool, len(d.Stores))
	for i, s := range d.Stores {
		if s.Name == "" {
			return newLoadError(ErrCodeInvalidName, "stores[%d]: name is required", i)
		}
		if seen[s.Name] {
			return newLoadError(ErrCodeDuplicateStore, "duplicate store %q", s.Name)
		}
		seen[s.Name] = true

		indexes := make(map[string]bool, len(s.Indexes))
		for j, idx := range s.Indexes {
			if idx.Name == "" {
				return newLoadError(ErrCodeInvalidName, "store %q indexes[%d]: name is required", s.Name, j)
			}
			if idx.KeyPath == "" {
				return newLoadError(ErrCodeInvalidKeyPath, "store %q index %q: keyPath is required", s.Name, idx.Name)
			}
			if indexes[idx.Name] {
				return newLoadError(ErrCodeDuplicateIndex, "store %q: duplicate index %q", s.Name, idx.Name)
			}
			indexes[idx.Name] = true
		}
	}
	return nil
}

package wiki

// defaultChangeDescription is recorded when an edit supplies none.
const defaultChangeDescription = "Content updated"

// needsRevision reports whether applying newContent over current must
// record a history entry. Only content edits are versioned; metadata-only
// updates leave the history untouched.
func needsRevision(current string, newContent *string) bool {
	return newContent != nil && *newContent != current
}

// revisionDescription picks the recorded description for an edit.
func revisionDescription(provided *string) string {
	if provided != nil && *provided != "" {
		return *provided
	}
	return defaultChangeDescription
}

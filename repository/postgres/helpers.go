package postgres

// nonNil keeps the NOT NULL value column satisfied for empty payloads.
func nonNil(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	return value
}

package repository

import "time"

// MongoOption applies a configuration option to the MongoStore.
type MongoOption func(*MongoStore)

// WithOperationTimeout bounds every MongoDB call. Zero disables the bound.
func WithOperationTimeout(d time.Duration) MongoOption {
	return func(s *MongoStore) {
		if d >= 0 {
			s.opTimeout = d
		}
	}
}

// WithConnectTimeout bounds connect and the initial ping.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(s *MongoStore) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}

// WithCollections overrides the collection names.
func WithCollections(creatures, users string) MongoOption {
	return func(s *MongoStore) {
		if creatures != "" {
			s.creatureColl = creatures
		}
		if users != "" {
			s.userColl = users
		}
	}
}

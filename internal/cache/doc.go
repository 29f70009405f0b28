// Package cache stores decoded speech clips so repeated announcements are
// synthesized once. A byte-bounded LRU in memory sits in front of a
// zstd-compressed directory on disk that survives between runs.
package cache

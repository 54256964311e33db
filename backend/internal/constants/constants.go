package constants

// Archive layout constants
const (
	// ArchiveFilePrefix marks per-chat message dumps inside a subject folder
	ArchiveFilePrefix = "messages_"
	// ArchiveFileSuffix is the extension shared by every archive file
	ArchiveFileSuffix = ".json"
	// ProfileFileName is the optional subject profile
	ProfileFileName = "profile.json"
	// IdentityCacheFileName holds the persisted user id -> handle map
	IdentityCacheFileName = "identity_cache.json"
)

// Output file names, rewritten on every run
const (
	MentionsFileName = "mentions.json"
	RepliesFileName  = "replies.json"
	ActivityFileName = "activity.json"
)

// Analysis constants
const (
	// MinMentionLength is the minimum number of word characters after '@'
	MinMentionLength = 4

	// DefaultTopMentions is how many mentions are shown when no limit is configured
	DefaultTopMentions = 20
	// DefaultTopReplies is how many reply pairs are shown when no limit is configured
	DefaultTopReplies = 10
)

// Directory lookup constants
const (
	// HandlePrefix is prepended to every resolved username
	HandlePrefix = "@"
	// DefaultLookupConcurrency bounds in-flight directory lookups
	DefaultLookupConcurrency = 4
)

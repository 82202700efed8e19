package location

// Well-known ids of the default set.
const (
	RootPlaceholderID int64 = 1
	ShareCategoryID   int64 = 100
	FirstShareEntryID int64 = 101
)

// NetworkStorageTag is the category of the example share entries.
const NetworkStorageTag = "network_storage"

const shareCategoryIDTag = "100"

// DefaultEntries returns the fixed location set used when nothing has been
// persisted: the two placeholders followed by the example SMB shares. With
// withIDs false the entries carry no server id.
func DefaultEntries(withIDs bool) []Entry {
	entries := []Entry{
		{
			ServerID:        RootPlaceholderID,
			ServerName:      "🔓 Add Root Location",
			ServerAddr:      RootSentinel,
			ConnectionType:  ConnFTP,
			ServerType:      ServerTypeRootAccess,
			Protocol:        ConnFTP,
			IsAnonymousMode: true,
			ServerPort:      21,
		},
		{
			ServerID:        ShareCategoryID,
			ServerName:      "🌐 Add SMB/CIFS Share",
			ServerAddr:      ShareSentinel,
			ConnectionType:  ConnSFTP,
			ServerType:      ServerTypeSMBAccess,
			Protocol:        ConnSFTP,
			IsAnonymousMode: true,
			ServerPort:      22,
		},
		exampleShare(FirstShareEntryID, "  🌐 Home Server (SMB)", "smb://192.168.1.100/shared"),
		exampleShare(FirstShareEntryID+1, "  🌐 NAS Drive (SMB)", "smb://192.168.1.200/public"),
	}
	if !withIDs {
		for i := range entries {
			entries[i].ServerID = 0
		}
	}
	return entries
}

func exampleShare(id int64, name, addr string) Entry {
	return Entry{
		ServerID:        id,
		ServerName:      name,
		ServerAddr:      addr,
		ConnectionType:  ConnSMB,
		Category:        NetworkStorageTag,
		ParentID:        shareCategoryIDTag,
		IsAnonymousMode: true,
		ServerPort:      445,
	}
}

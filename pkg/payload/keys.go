// Package payload defines the open key/value maps exchanged with clients:
// request extras and result envelopes, plus the wire keys both use.
package payload

// Request keys.
const (
	KeyServerID       = "serverId"
	KeyServerAddr     = "serverAddr"
	KeyServerName     = "serverName"
	KeySharedFolder   = "sharedFolder"
	KeyConnectionType = "connectionType"
	KeyServerType     = "serverType"
	KeyServerPort     = "serverPort"
	KeyAnonymous      = "isAnonymousMode"
	KeyUsername       = "username"
	KeyPassword       = "password"
	KeyCategory       = "category"
	KeyParentID       = "parentId"
	KeyProtocol       = "protocol"
	KeyFilePath       = "filePath"
	KeyParentPath     = "parentPath"
	KeyNewName        = "newName"
	KeySourcePath     = "sourcePath"
	KeyDstFolderPath  = "dstFolderPath"
	KeyDstFileName    = "dstFileName"
	KeyFileDescriptor = "fileDescriptor"
)

// Result keys.
const (
	KeyIsSuccess        = "isSuccess"
	KeyIsValidRequest   = "isValidRequest"
	KeyResult           = "result"
	KeyServerList       = "serverList"
	KeySharedFolderList = "sharedFolderList"
	KeyFileList         = "fileList"
	KeyFileObject       = "fileObject"
)

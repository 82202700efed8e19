// Package files implements the root-access file collaborator: listing,
// stat, create, rename, delete and copy on the host filesystem below a
// configured root, plus a listing cache and a table of open descriptors.
package files

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Info describes one file or directory as reported to clients.
type Info struct {
	ServerID     int64  `json:"serverId"`
	FilePath     string `json:"filePath"`
	FileName     string `json:"fileName"`
	IsDirectory  bool   `json:"isDirectory"`
	FileSize     int64  `json:"fileSize"`
	LastModified int64  `json:"lastModified"` // unix milliseconds
}

func newInfo(serverID int64, virtual string, fi fs.FileInfo) Info {
	name := path.Base(virtual)
	if virtual == "/" {
		name = "/"
	}
	size := fi.Size()
	if fi.IsDir() {
		size = 0
	}
	return Info{
		ServerID:     serverID,
		FilePath:     virtual,
		FileName:     name,
		IsDirectory:  fi.IsDir(),
		FileSize:     size,
		LastModified: fi.ModTime().UnixMilli(),
	}
}

// sortInfos orders directories first, then by case-insensitive name.
func sortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDirectory != infos[j].IsDirectory {
			return infos[i].IsDirectory
		}
		return strings.ToLower(infos[i].FileName) < strings.ToLower(infos[j].FileName)
	})
}

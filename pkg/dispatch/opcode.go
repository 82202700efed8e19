package dispatch

import (
	"context"
	"strconv"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// Opcode selects the operation a request performs. Values are part of the
// client protocol and must not be renumbered.
type Opcode int32

const (
	OpConnect              Opcode = 0
	OpGetServerList        Opcode = 1
	OpAddServer            Opcode = 2
	OpUpdateServer         Opcode = 4
	OpDeleteServer         Opcode = 6
	OpFindServer           Opcode = 7
	OpGetSharedFolder      Opcode = 8
	OpGetFileList          Opcode = 9
	OpGetFileObject        Opcode = 10
	OpGetStringMap         Opcode = 11
	OpGetResource          Opcode = 12
	OpVerifyServerInfo     Opcode = 13
	OpCheckPermission      Opcode = 14
	OpGetServerCount       Opcode = 15
	OpRemoveMonitor        Opcode = 16
	OpRemoveCachedFileList Opcode = 17
	OpCreateFolder         Opcode = 121
	OpRename               Opcode = 122
	OpUpload               Opcode = 123
	OpGetFileDescriptor    Opcode = 124
	OpDelete               Opcode = 125
	OpInternalCopy         Opcode = 126
	OpInternalMove         Opcode = 127
	OpExternalCopy         Opcode = 128
	OpExternalMove         Opcode = 129
	OpExist                Opcode = 130
)

// handlerFunc fills res for req. res already carries the two default
// success flags.
type handlerFunc func(d *Dispatcher, ctx context.Context, req *Request, res payload.Map)

// operation describes one entry of the dispatch table.
type operation struct {
	Name    string
	Handler handlerFunc
}

// opTable maps opcodes to their handlers. Opcodes with a nil handler are
// accepted and complete with only the default flags.
var opTable map[Opcode]*operation

func init() {
	opTable = map[Opcode]*operation{
		OpConnect:              {Name: "CONNECT"},
		OpGetServerList:        {Name: "GET_SERVER_LIST", Handler: handleGetServerList},
		OpAddServer:            {Name: "ADD_SERVER", Handler: handleAddServer},
		OpUpdateServer:         {Name: "UPDATE_SERVER", Handler: handleUpdateServer},
		OpDeleteServer:         {Name: "DELETE_SERVER", Handler: handleDeleteServer},
		OpFindServer:           {Name: "FIND_SERVER", Handler: handleFindServer},
		OpGetSharedFolder:      {Name: "GET_SHARED_FOLDER", Handler: handleGetSharedFolder},
		OpGetFileList:          {Name: "GET_FILE_LIST", Handler: handleGetFileList},
		OpGetFileObject:        {Name: "GET_FILE_OBJECT", Handler: handleGetFileObject},
		OpGetStringMap:         {Name: "GET_STRING_MAP", Handler: handleGetStringMap},
		OpGetResource:          {Name: "GET_RESOURCE"},
		OpVerifyServerInfo:     {Name: "VERIFY_SERVER_INFO"},
		OpCheckPermission:      {Name: "CHECK_PERMISSION", Handler: handleCheckPermission},
		OpGetServerCount:       {Name: "GET_SERVER_COUNT"},
		OpRemoveMonitor:        {Name: "REMOVE_MONITOR"},
		OpRemoveCachedFileList: {Name: "REMOVE_CACHED_FILE_LIST", Handler: handleRemoveCachedFileList},
		OpCreateFolder:         {Name: "CREATE_FOLDER", Handler: handleCreateFolder},
		OpRename:               {Name: "RENAME", Handler: handleRename},
		OpUpload:               {Name: "UPLOAD", Handler: handleUpload},
		OpGetFileDescriptor:    {Name: "GET_FILE_DESCRIPTOR", Handler: handleGetFileDescriptor},
		OpDelete:               {Name: "DELETE", Handler: handleDelete},
		OpInternalCopy:         {Name: "INTERNAL_COPY", Handler: handleInternalCopy},
		OpInternalMove:         {Name: "INTERNAL_MOVE", Handler: handleInternalMove},
		OpExternalCopy:         {Name: "EXTERNAL_COPY"},
		OpExternalMove:         {Name: "EXTERNAL_MOVE"},
		OpExist:                {Name: "EXIST", Handler: handleExist},
	}
}

// String returns the operation name, or UNKNOWN(<n>) for opcodes outside
// the table.
func (o Opcode) String() string {
	if op, ok := opTable[o]; ok {
		return op.Name
	}
	return "UNKNOWN(" + strconv.Itoa(int(o)) + ")"
}

// Known reports whether o is in the dispatch table.
func (o Opcode) Known() bool {
	_, ok := opTable[o]
	return ok
}

// Opcodes returns every known opcode in ascending order.
func Opcodes() []Opcode {
	return []Opcode{
		OpConnect, OpGetServerList, OpAddServer, OpUpdateServer, OpDeleteServer,
		OpFindServer, OpGetSharedFolder, OpGetFileList, OpGetFileObject,
		OpGetStringMap, OpGetResource, OpVerifyServerInfo, OpCheckPermission,
		OpGetServerCount, OpRemoveMonitor, OpRemoveCachedFileList,
		OpCreateFolder, OpRename, OpUpload, OpGetFileDescriptor, OpDelete,
		OpInternalCopy, OpInternalMove, OpExternalCopy, OpExternalMove, OpExist,
	}
}

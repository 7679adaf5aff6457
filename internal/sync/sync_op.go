package sync

type OpType uint8

var opTypeNames = []string{
	"Create",
	"Update",
	"Delete",
}

const (
	OpCreate OpType = iota
	OpUpdate
	OpDelete
)

type SyncOperation struct {
	Op      OpType
	RelPath string
	Source  *FileMetadata
	Dest    *FileMetadata
}

func (op OpType) String() string {
	return opTypeNames[op]
}

package beheader

type Limits struct {
	MaxImageBytes        uint64 // PNG payload after re-encoding
	MaxDocumentBytes     uint64
	MaxArchiveEntries    int    // total entries across all source archives
	MaxArchiveEntryBytes uint64 // single extracted entry, bomb guard
	MaxArchiveTotalBytes uint64 // all extracted entries together, bomb guard
}

func defaultLimits() Limits {
	return Limits{
		MaxImageBytes:        512 << 20, // 512 MiB
		MaxDocumentBytes:     1 << 30,   // 1 GiB
		MaxArchiveEntries:    100_000,
		MaxArchiveEntryBytes: 4 << 30, // 4 GiB
		MaxArchiveTotalBytes: 8 << 30, // 8 GiB
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxImageBytes == 0 {
		l.MaxImageBytes = d.MaxImageBytes
	}
	if l.MaxDocumentBytes == 0 {
		l.MaxDocumentBytes = d.MaxDocumentBytes
	}
	if l.MaxArchiveEntries == 0 {
		l.MaxArchiveEntries = d.MaxArchiveEntries
	}
	if l.MaxArchiveEntryBytes == 0 {
		l.MaxArchiveEntryBytes = d.MaxArchiveEntryBytes
	}
	if l.MaxArchiveTotalBytes == 0 {
		l.MaxArchiveTotalBytes = d.MaxArchiveTotalBytes
	}
	return l
}

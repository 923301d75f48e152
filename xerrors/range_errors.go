package xerrors

var (
	// ErrIndexOutOfRange 索引越界。
	ErrIndexOutOfRange = New(ErrOutOfRange, 400101, "index out of range", "index must be within [0, n)", nil)
	// ErrInvalidRange 区间参数非法。
	ErrInvalidRange = New(ErrOutOfRange, 400102, "invalid range", "range bounds must satisfy 0 <= left <= right < n", nil)
	// ErrInvalidCapacity 容量非法。
	ErrInvalidCapacity = New(ErrInvalidArg, 400103, "invalid capacity", "requested capacity is out of the acceptable bounds", nil)
	// ErrNilCombine 聚合函数缺失。
	ErrNilCombine = New(ErrInvalidArg, 400104, "nil combine function", "an aggregate must provide a combine function", nil)
	// ErrRankOutOfRange 压缩秩越界。
	ErrRankOutOfRange = New(ErrOutOfRange, 400105, "rank out of range", "rank must be within [1, m]", nil)
	// ErrLedgerFull 账本容量耗尽。
	ErrLedgerFull = New(ErrLimitExceeded, 400106, "ledger full", "append exceeds the ledger's fixed capacity", nil)
	// ErrAmountOverflow 金额换算为分后超出 int64 表示范围。
	ErrAmountOverflow = New(ErrInvalidArg, 400107, "amount overflow", "amount in cents must fit in int64", nil)
)

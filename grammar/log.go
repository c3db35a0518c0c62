package grammar

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("treelang.grammar")

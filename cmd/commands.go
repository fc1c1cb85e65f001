package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fzft/go-dense/densemap"
)

var (
	errNotInteger = errors.New("value is not an integer or out of range")
	errNoSuchKey  = errors.New("no such key")
	errWrongType  = errors.New("sets of different kinds cannot be swapped")
	errReserved   = errors.New("member is reserved")
)

// maxCount bounds the counts SRESERVE and SRESIZE accept.
const maxCount = 1 << 22

type commandProc func(sh *shell, argv [][]byte) (reply, error)

// command is one entry of the command table. A negative arity means at
// least -arity arguments, the command name included.
type command struct {
	name    string
	arity   int
	params  string
	summary string
	proc    commandProc
}

var commandList = []*command{
	{"sadd", -3, "key member [member ...]", "Add members to a set, creating it if needed.", saddCommand},
	{"srem", -3, "key member [member ...]", "Remove members from a set.", sremCommand},
	{"sismember", 3, "key member", "Report whether member is in the set.", sismemberCommand},
	{"smismember", -3, "key member [member ...]", "Report membership of each member.", smismemberCommand},
	{"scard", 2, "key", "Number of members.", scardCommand},
	{"smembers", 2, "key", "All members, sorted.", smembersCommand},
	{"smemsize", 2, "key", "Bytes held by the set's buckets.", smemsizeCommand},
	{"sreserve", 3, "key count", "Make room for count more members.", sreserveCommand},
	{"sresize", 3, "key buckets", "Grow the set to at least buckets buckets.", sresizeCommand},
	{"sclear", 2, "key", "Remove every member, keeping the buckets.", sclearCommand},
	{"sswap", 3, "key key", "Exchange the members of two sets.", sswapCommand},
	{"del", -2, "key [key ...]", "Delete sets.", delCommand},
	{"exists", -2, "key [key ...]", "Count the given keys that exist.", existsCommand},
	{"keys", 1, "", "All keys in creation order.", keysCommand},
	{"info", 1, "", "Keyspace and process statistics.", infoCommand},
	{"help", 1, "", "This list.", helpCommand},
	{"quit", 1, "", "Leave the shell.", quitCommand},
	{"exit", 1, "", "Leave the shell.", quitCommand},
}

func newCommandTable() *densemap.Map[string, *command] {
	table := densemap.New[string, *command](densemap.StringInfo{}, len(commandList))
	for _, c := range commandList {
		table.TryEmplace(c.name, c)
	}
	return table
}

// unknownCommandError quotes the name and the first arguments, up to 128
// bytes of them.
func unknownCommandError(argv [][]byte) error {
	args := ""
	limit := 128
	for _, arg := range argv[1:] {
		remaining := limit - len(args)
		if remaining <= 0 {
			break
		}
		args += fmt.Sprintf("'%.*s' ", remaining, arg)
	}
	return errors.Newf("unknown command '%.128s', with args beginning with: %s", argv[0], args)
}

func checkArity(c *command, argc int) error {
	if (c.arity > 0 && c.arity != argc) || argc < -c.arity {
		return errors.Newf("wrong number of arguments for '%s' command", c.name)
	}
	return nil
}

func parseCount(arg []byte) (int, error) {
	n, err := strconv.Atoi(string(arg))
	if err != nil || n < 0 || n > maxCount {
		return 0, errNotInteger
	}
	return n, nil
}

// isReserved reports whether member is one of the keys StringInfo keeps for
// empty and erased buckets.
func isReserved(member []byte) bool {
	info := densemap.StringInfo{}
	return string(member) == info.EmptyKey() || string(member) == info.TombstoneKey()
}

func saddCommand(sh *shell, argv [][]byte) (reply, error) {
	for _, member := range argv[2:] {
		if isReserved(member) {
			return nil, errReserved
		}
	}
	set := sh.keys.getOrCreate(argv[1])
	added := 0
	for _, member := range argv[2:] {
		l := densemap.LookupBytes(member)
		if !set.FindAs(l).AtEnd() {
			continue
		}
		if _, inserted := set.InsertAs(string(member), l); inserted {
			added++
		}
	}
	return intReply(added), nil
}

func sremCommand(sh *shell, argv [][]byte) (reply, error) {
	set, ok := sh.keys.get(argv[1])
	if !ok {
		return intReply(0), nil
	}
	removed := 0
	for _, member := range argv[2:] {
		if it := set.FindAs(densemap.LookupBytes(member)); !it.AtEnd() {
			set.EraseIter(it)
			removed++
		}
	}
	sh.keys.removeIfEmpty(argv[1])
	return intReply(removed), nil
}

func isMember(set stringSet, member []byte) intReply {
	if set == nil || set.FindAs(densemap.LookupBytes(member)).AtEnd() {
		return 0
	}
	return 1
}

func sismemberCommand(sh *shell, argv [][]byte) (reply, error) {
	set, _ := sh.keys.get(argv[1])
	return isMember(set, argv[2]), nil
}

func smismemberCommand(sh *shell, argv [][]byte) (reply, error) {
	set, _ := sh.keys.get(argv[1])
	r := make(arrayReply, 0, len(argv)-2)
	for _, member := range argv[2:] {
		r = append(r, isMember(set, member))
	}
	return r, nil
}

func scardCommand(sh *shell, argv [][]byte) (reply, error) {
	set, ok := sh.keys.get(argv[1])
	if !ok {
		return intReply(0), nil
	}
	return intReply(set.Size()), nil
}

func smembersCommand(sh *shell, argv [][]byte) (reply, error) {
	set, ok := sh.keys.get(argv[1])
	if !ok {
		return arrayReply{}, nil
	}
	members := set.Values()
	slices.Sort(members)
	return membersReply(members), nil
}

func smemsizeCommand(sh *shell, argv [][]byte) (reply, error) {
	set, ok := sh.keys.get(argv[1])
	if !ok {
		return intReply(0), nil
	}
	return intReply(set.MemorySize()), nil
}

func sreserveCommand(sh *shell, argv [][]byte) (reply, error) {
	n, err := parseCount(argv[2])
	if err != nil {
		return nil, err
	}
	sh.keys.getOrCreate(argv[1]).Reserve(n)
	return statusReply("OK"), nil
}

func sresizeCommand(sh *shell, argv [][]byte) (reply, error) {
	n, err := parseCount(argv[2])
	if err != nil {
		return nil, err
	}
	sh.keys.getOrCreate(argv[1]).Resize(n)
	return statusReply("OK"), nil
}

func sclearCommand(sh *shell, argv [][]byte) (reply, error) {
	set, ok := sh.keys.get(argv[1])
	if !ok {
		return nil, errNoSuchKey
	}
	set.Clear()
	return statusReply("OK"), nil
}

func sswapCommand(sh *shell, argv [][]byte) (reply, error) {
	if err := sh.keys.swap(argv[1], argv[2]); err != nil {
		return nil, err
	}
	return statusReply("OK"), nil
}

func delCommand(sh *shell, argv [][]byte) (reply, error) {
	deleted := 0
	for _, key := range argv[1:] {
		if sh.keys.remove(key) {
			deleted++
		}
	}
	return intReply(deleted), nil
}

func existsCommand(sh *shell, argv [][]byte) (reply, error) {
	count := 0
	for _, key := range argv[1:] {
		if _, ok := sh.keys.get(key); ok {
			count++
		}
	}
	return intReply(count), nil
}

func keysCommand(sh *shell, _ [][]byte) (reply, error) {
	return membersReply(sh.keys.keys()), nil
}

func infoCommand(sh *shell, _ [][]byte) (reply, error) {
	members, memory := sh.keys.stats()
	var b strings.Builder
	fmt.Fprintf(&b, "# Server\n")
	fmt.Fprintf(&b, "dense_cli_version:%s\n", DenseCliVersion)
	fmt.Fprintf(&b, "build_id:%s\n", buildIDHash())
	fmt.Fprintf(&b, "set_kind:%s\n", sh.keys.kind.name)
	fmt.Fprintf(&b, "\n# Keyspace\n")
	fmt.Fprintf(&b, "keys:%d\n", sh.keys.len())
	fmt.Fprintf(&b, "members:%d\n", members)
	fmt.Fprintf(&b, "bucket_memory:%d\n", memory)
	if rss, ok := maxRSS(); ok {
		fmt.Fprintf(&b, "\n# Memory\n")
		fmt.Fprintf(&b, "maxrss:%d\n", rss)
	}
	return textReply(b.String()), nil
}

func helpCommand(sh *shell, _ [][]byte) (reply, error) {
	var names []string
	for it := sh.commands.Begin(); !it.AtEnd(); it.Next() {
		names = append(names, *it.Bucket().GetFirst())
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		c, _ := sh.lookupCommand([]byte(name))
		fmt.Fprintf(&b, "%s\n  %s\n", strings.TrimSpace(strings.ToUpper(c.name)+" "+c.params), c.summary)
	}
	return textReply(b.String()), nil
}

func quitCommand(sh *shell, _ [][]byte) (reply, error) {
	sh.quit = true
	return nil, nil
}

package kernel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint returns a stable content hash over exactly the
// scheduling-relevant fields of the kernel: name, target identity, domains
// (inames, parameters, parent), instructions (id, accesses, dependencies,
// priority, boostability, predicates, forced inames), iname tags, and the
// loop priority order. Kernels with equal fingerprints receive identical
// schedules, which makes the fingerprint the key of the schedule cache.
func (k *Kernel) Fingerprint() string {
	var b strings.Builder

	writeList := func(label string, elems []string) {
		b.WriteString(label)
		b.WriteByte('=')
		b.WriteString(strings.Join(elems, ","))
		b.WriteByte(';')
	}
	sortedCopy := func(elems []string) []string {
		out := append([]string(nil), elems...)
		sort.Strings(out)
		return out
	}

	fmt.Fprintf(&b, "name=%s;target=%s;", k.Name, k.Target)

	for i, dom := range k.Domains {
		fmt.Fprintf(&b, "domain[%d]{parent=%d;", i, dom.Parent)
		writeList("inames", dom.Inames)
		writeList("params", dom.Parameters)
		b.WriteString("};")
	}

	insns := append([]*Instruction(nil), k.Instructions...)
	sort.Slice(insns, func(i, j int) bool { return insns[i].ID < insns[j].ID })
	for _, insn := range insns {
		fmt.Fprintf(&b, "insn[%s]{priority=%d;boostable=%t;", insn.ID, insn.Priority, insn.Boostable)
		accessStrings := func(accesses []Access) []string {
			out := make([]string, len(accesses))
			for i, a := range accesses {
				out[i] = a.String()
			}
			return out
		}
		writeList("writes", accessStrings(insn.Writes))
		writeList("reads", accessStrings(insn.Reads))
		writeList("deps", sortedCopy(insn.DependsOn))
		writeList("boost_into", sortedCopy(insn.BoostableInto))
		writeList("predicates", sortedCopy(insn.Predicates))
		writeList("within", sortedCopy(insn.ForcedInames))
		b.WriteString("};")
	}

	tagged := make([]string, 0, len(k.INameTags))
	for iname, tag := range k.INameTags {
		tagged = append(tagged, iname+":"+tag.String())
	}
	writeList("tags", sortedCopy(tagged))

	args := sortedCopy(k.Arguments)
	writeList("args", args)

	temps := make([]string, 0, len(k.Temporaries))
	for name, tv := range k.Temporaries {
		temps = append(temps, fmt.Sprintf("%s:local=%t", name, tv.Local))
	}
	writeList("temporaries", sortedCopy(temps))

	writeList("loop_priority", k.LoopPriority)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

package host

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Ensemble dispatch primitive
// ---------------------------------------------------------------------------

// CreateEnsembleCommand registers an ensemble-kind command: invocations
// are routed through its mapping table instead of a handler. unknownName
// names the command invoked when a subcommand cannot be resolved.
func (in *Interp) CreateEnsembleCommand(name, unknownName string, clientData any, deleteProc DeleteProc) (*Command, error) {
	cmd, err := in.CreateCommand(name, nil, clientData, deleteProc)
	if err != nil {
		return nil, err
	}
	cmd.ensemble = true
	cmd.mapping = make(map[string]string)
	cmd.unknown = Qualify(unknownName)
	return cmd, nil
}

// IsEnsembleCommand reports whether the command routes through the
// ensemble dispatch primitive.
func IsEnsembleCommand(cmd *Command) bool {
	return cmd != nil && cmd.ensemble
}

// SetEnsembleMapping maps a subcommand name to the fully qualified
// command that implements it.
func SetEnsembleMapping(cmd *Command, sub, target string) error {
	if !IsEnsembleCommand(cmd) {
		return fmt.Errorf("command %q is not an ensemble", cmd.Name())
	}
	cmd.mapping[sub] = Qualify(target)
	return nil
}

// UnsetEnsembleMapping removes a subcommand mapping.
func UnsetEnsembleMapping(cmd *Command, sub string) {
	if IsEnsembleCommand(cmd) {
		delete(cmd.mapping, sub)
	}
}

// EnsembleMapping returns a copy of the mapping table.
func EnsembleMapping(cmd *Command) map[string]string {
	if !IsEnsembleCommand(cmd) {
		return nil
	}
	out := make(map[string]string, len(cmd.mapping))
	for k, v := range cmd.mapping {
		out[k] = v
	}
	return out
}

// dispatchEnsemble resolves a subcommand through the mapping table:
// exact match first, then unique prefix. Unresolved names go to the
// unknown handler, whose non-error result is a redirect word list that
// is re-dispatched through the map exactly once.
func (in *Interp) dispatchEnsemble(cmd *Command, invokedAs string, args []string) (string, error) {
	if len(args) > 0 {
		if target, ok := in.resolveMapping(cmd, args[0]); ok {
			return in.Invoke(target, args[1:]...)
		}
	}
	return in.invokeUnknown(cmd, invokedAs, args)
}

func (in *Interp) resolveMapping(cmd *Command, sub string) (string, bool) {
	if target, ok := cmd.mapping[sub]; ok {
		return target, true
	}
	var match string
	count := 0
	for name := range cmd.mapping {
		if strings.HasPrefix(name, sub) {
			match = cmd.mapping[name]
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	return "", false
}

func (in *Interp) invokeUnknown(cmd *Command, invokedAs string, args []string) (string, error) {
	if cmd.unknown == "" || in.FindCommand(cmd.unknown) == nil {
		err := in.badSubcommandError(cmd, args)
		in.setError(err.Error())
		return "", err
	}
	handlerArgs := make([]string, 0, len(args)+1)
	handlerArgs = append(handlerArgs, invokedAs)
	handlerArgs = append(handlerArgs, args...)
	res, err := in.Invoke(cmd.unknown, handlerArgs...)
	if err != nil {
		return "", err
	}

	// A non-error unknown result is a redirect list: the first word
	// must be a mapped subcommand of this ensemble.
	words, err := SplitList(res)
	if err != nil || len(words) < 2 {
		err := fmt.Errorf("invalid redirect %q from unknown handler for %q", res, cmd.Name())
		in.setError(err.Error())
		return "", err
	}
	target, ok := in.resolveMapping(cmd, words[1])
	if !ok {
		err := fmt.Errorf("unknown handler for %q redirected to unmapped subcommand %q", cmd.Name(), words[1])
		in.setError(err.Error())
		return "", err
	}
	return in.Invoke(target, words[2:]...)
}

func (in *Interp) badSubcommandError(cmd *Command, args []string) error {
	names := make([]string, 0, len(cmd.mapping))
	for name := range cmd.mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(args) == 0 {
		return fmt.Errorf("wrong # args: should be \"%s subcommand ?arg ...?\"", cmd.ShortName())
	}
	return fmt.Errorf("unknown subcommand %q: must be %s", args[0], strings.Join(names, ", "))
}

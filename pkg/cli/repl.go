package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/automate-travel/studio/pkg/catalog"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/repository"
	"github.com/automate-travel/studio/pkg/usecase/archive"
	"github.com/automate-travel/studio/pkg/usecase/session"
	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
)

const replHelp = `Commands:
  open <path>                 select a photo and analyze it
  mode <mode>                 switch to offer_booster or identity_builder (resets the session)
  enhance <preset>            apply an enhancement preset
  edit <request>              edit the current image with a free-text request
  generate [description]      generate a portrait of the person in the opened photo
  pose <category> <variant>   set the portrait pose, e.g. "pose power B"
  attire <type>               set the portrait attire
  logo <path|none>            set or remove the company logo
  undo | redo                 move through the history
  compare                     show the original next to the current image
  history                     list every artifact of the session
  tips                        show quick edit suggestions
  recommend                   show presets matching the current analysis
  presets                     list enhancement presets
  status                      show the processing state
  clear                       dismiss the current error
  save [session-id]           save the session
  export <key>                upload the current image under key
  quit                        end the session`

// repl maps session commands onto the session controller
type repl struct {
	ctrl *session.Controller
	cfg  *config
	out  io.Writer

	// askKey reads an API key from the user when credentials are missing
	askKey func() (string, error)
	onMode func(model.Mode)
	// spin shows progress while fn runs
	spin func(label string, fn func())

	archive   *archive.Archive
	sessionID model.SessionID
}

func newREPL(ctrl *session.Controller, cfg *config, out io.Writer) *repl {
	r := &repl{ctrl: ctrl, cfg: cfg, out: out}
	r.spin = r.spinner
	return r
}

func (r *repl) spinner(label string, fn func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(r.out))
	s.Suffix = " " + label
	s.Start()
	defer s.Stop()
	fn()
}

// exec runs one input line and reports whether the session should end
func (r *repl) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, replHelp)
	case "open":
		err = r.open(ctx, rest)
	case "mode":
		err = r.mode(args)
	case "enhance":
		err = r.enhance(ctx, args)
	case "edit":
		err = r.transform("Editing", func() (*model.HistoryItem, error) { return r.ctrl.Edit(ctx, rest) })
	case "generate":
		err = r.transform("Generating portrait", func() (*model.HistoryItem, error) { return r.ctrl.Generate(ctx, rest) })
	case "pose":
		err = r.pose(args)
	case "attire":
		err = r.attire(args)
	case "logo":
		err = r.logo(rest)
	case "undo":
		r.move(r.ctrl.Undo(), "nothing to undo")
	case "redo":
		r.move(r.ctrl.Redo(), "nothing to redo")
	case "compare":
		r.compare()
	case "history":
		r.history()
	case "tips":
		for _, tip := range r.ctrl.Tips() {
			fmt.Fprintf(r.out, "  - %s\n", tip)
		}
	case "recommend":
		r.recommend()
	case "presets":
		r.presets()
	case "status":
		r.status()
	case "clear":
		r.ctrl.ClearError()
	case "save":
		err = r.save(ctx, args)
	case "export":
		err = r.export(ctx, rest)
	default:
		err = goerr.New("unknown command, type 'help'", goerr.V("command", cmd))
	}

	if err != nil {
		r.report(err)
	}
	r.checkCredentials()
	return false
}

// report prints err unless it is the stale result of a superseded operation
func (r *repl) report(err error) {
	if model.Classify(err) == model.ErrorKindStale {
		return
	}
	msg := model.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintf(r.out, "error: %s\n", msg)
}

// checkCredentials holds the session until an API key is provided
func (r *repl) checkCredentials() {
	if !r.ctrl.Status().CredentialsMissing || r.askKey == nil {
		return
	}

	fmt.Fprintln(r.out, "An API key is required to continue.")
	key, err := r.askKey()
	if err != nil || strings.TrimSpace(key) == "" {
		fmt.Fprintln(r.out, "No key entered. Set GEMINI_API_KEY or retry the command to be asked again.")
		return
	}
	r.cfg.apiKey.Set(key)
	r.ctrl.ClearError()
	fmt.Fprintln(r.out, "API key configured. Retry the last command.")
}

func (r *repl) open(ctx context.Context, path string) error {
	if path == "" {
		return goerr.Wrap(model.ErrInvalidInput, "usage: open <path>")
	}
	img, err := model.LoadImage(path)
	if err != nil {
		return err
	}

	var item model.HistoryItem
	r.spin("Analyzing", func() {
		item, err = r.ctrl.SelectFile(ctx, img)
	})
	if err != nil {
		return err
	}
	r.sessionID = ""
	r.printItem(item)
	r.printStatusError()
	return nil
}

func (r *repl) mode(args []string) error {
	if len(args) != 1 {
		return goerr.Wrap(model.ErrInvalidInput, "usage: mode <offer_booster|identity_builder>")
	}
	m := model.Mode(args[0])
	if err := r.ctrl.SwitchMode(m); err != nil {
		return err
	}
	r.sessionID = ""
	if r.onMode != nil {
		r.onMode(m)
	}
	fmt.Fprintf(r.out, "Switched to %s\n", m)
	return nil
}

func (r *repl) enhance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return goerr.Wrap(model.ErrInvalidInput, "usage: enhance <preset>")
	}
	return r.transform("Enhancing", func() (*model.HistoryItem, error) {
		return r.ctrl.Enhance(ctx, model.PresetID(args[0]))
	})
}

func (r *repl) transform(label string, fn func() (*model.HistoryItem, error)) error {
	var (
		item *model.HistoryItem
		err  error
	)
	r.spin(label, func() {
		item, err = fn()
	})
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	r.printItem(*item)
	r.printStatusError()
	return nil
}

func (r *repl) pose(args []string) error {
	if len(args) != 2 {
		return goerr.Wrap(model.ErrInvalidInput, "usage: pose <category> <variant>")
	}
	pose := model.Pose{
		Category: model.PoseCategory(strings.ToLower(args[0])),
		Variant:  model.PoseVariant(strings.ToUpper(args[1])),
	}
	if err := r.ctrl.SetPose(pose); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Pose set to %s %s\n", pose.Category, pose.Variant)
	return nil
}

func (r *repl) attire(args []string) error {
	if len(args) != 1 {
		return goerr.Wrap(model.ErrInvalidInput, "usage: attire <suit|shirt|polo|tshirt|jacket>")
	}
	attire := model.AttireType(strings.ToLower(args[0]))
	if err := r.ctrl.SetAttire(attire); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Attire set to %s\n", attire)
	return nil
}

func (r *repl) logo(path string) error {
	switch path {
	case "":
		return goerr.Wrap(model.ErrInvalidInput, "usage: logo <path|none>")
	case "none":
		r.ctrl.SetLogo(nil)
		fmt.Fprintln(r.out, "Logo removed")
		return nil
	}

	img, err := model.LoadImage(path)
	if err != nil {
		return err
	}
	r.ctrl.SetLogo(img)
	fmt.Fprintf(r.out, "Logo set to %s\n", img.Name)
	return nil
}

func (r *repl) move(moved bool, msg string) {
	if !moved {
		fmt.Fprintln(r.out, msg)
		return
	}
	if item, ok := r.ctrl.Current(); ok {
		r.printItem(item)
	}
}

func (r *repl) compare() {
	original, ok := r.ctrl.Original()
	if !ok {
		fmt.Fprintln(r.out, "no image opened")
		return
	}
	current, _ := r.ctrl.Current()
	fmt.Fprintf(r.out, "original: %s\ncurrent:  %s\n", original.Display, current.Display)
}

func (r *repl) history() {
	items, cursor := r.ctrl.Items()
	if len(items) == 0 {
		fmt.Fprintln(r.out, "no image opened")
		return
	}
	for i, item := range items {
		mark := " "
		if i == cursor {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %d %s\t%s\t%s\n", mark, i, item.Origin, item.Image.Name, item.CreatedAt.Format("15:04:05"))
	}
}

func (r *repl) recommend() {
	set := r.ctrl.Recommendations()
	for _, p := range r.ctrl.Presets() {
		if set.Has(p.ID) {
			fmt.Fprintf(r.out, "  %s\t%s\n", p.ID, p.Description)
		}
	}
}

func (r *repl) presets() {
	for _, p := range r.ctrl.Presets() {
		fmt.Fprintf(r.out, "  %s\t%s\t%s\n", p.ID, p.Category, p.Label)
	}
}

func (r *repl) status() {
	st := r.ctrl.Status()
	fmt.Fprintf(r.out, "mode: %s\nstate: %s\n", r.ctrl.Mode(), st.State)
	if st.Busy() {
		fmt.Fprintf(r.out, "active: %s\n", st.Active)
	}
	if st.Message != "" {
		fmt.Fprintf(r.out, "error: %s\n", st.Message)
	}
	identity := r.ctrl.Identity()
	fmt.Fprintf(r.out, "pose: %s %s\nattire: %s\nlogo: %t\n",
		identity.Pose.Category, identity.Pose.Variant, identity.Attire, identity.Logo != nil)
}

func (r *repl) save(ctx context.Context, args []string) error {
	if r.cfg.project == "" {
		return goerr.New("project is required to save sessions, set GOOGLE_CLOUD_PROJECT")
	}
	uc, err := r.archiveFor(ctx)
	if err != nil {
		return err
	}

	id := r.sessionID
	if len(args) > 0 {
		id = model.SessionID(args[0])
	}

	var record *model.SessionRecord
	r.spin("Saving", func() {
		record, err = uc.Save(ctx, id, r.ctrl)
	})
	if err != nil {
		return err
	}
	r.sessionID = record.ID
	fmt.Fprintf(r.out, "Saved session %s (%d artifacts)\n", record.ID, len(record.Artifacts))
	return nil
}

func (r *repl) export(ctx context.Context, key string) error {
	if key == "" {
		return goerr.Wrap(model.ErrInvalidInput, "usage: export <key>")
	}
	current, ok := r.ctrl.Current()
	if !ok {
		return goerr.Wrap(session.ErrNoImage, "nothing to export")
	}

	uc, err := r.archiveFor(ctx)
	if err != nil {
		return err
	}
	if err := uc.Export(ctx, key, current.Image); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Exported %s\n", key)
	return nil
}

func (r *repl) archiveFor(ctx context.Context) (*archive.Archive, error) {
	if r.archive != nil {
		return r.archive, nil
	}

	storage, err := r.cfg.newStorage(ctx)
	if err != nil {
		return nil, err
	}

	// Export only needs object storage; records need the repository.
	var repo repository.Repository
	if r.cfg.project != "" {
		if repo, err = r.cfg.newRepository(ctx); err != nil {
			return nil, err
		}
	}
	r.archive = archive.New(storage, repo)
	return r.archive, nil
}

func (r *repl) printItem(item model.HistoryItem) {
	items, cursor := r.ctrl.Items()
	fmt.Fprintf(r.out, "[%d/%d] %s (%s)\n  view: %s\n", cursor+1, len(items), item.Image.Name, item.Origin, item.Display)
	if item.Analysis != nil && item.Analysis.Analysis != "" {
		fmt.Fprintf(r.out, "  %s\n", item.Analysis.Analysis)
	}
}

// printStatusError shows an error recorded while the command itself
// succeeded, such as a failed follow-up analysis
func (r *repl) printStatusError() {
	st := r.ctrl.Status()
	if st.Message != "" && !errors.Is(st.Err, model.ErrCredentialsMissing) {
		fmt.Fprintf(r.out, "warning: %s\n", st.Message)
	}
}

func presetIDs() []model.PresetID {
	presets := catalog.Default().Presets()
	ids := make([]model.PresetID, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
	}
	return ids
}

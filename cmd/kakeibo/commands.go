package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/number"

	"github.com/mmynk/kakeibo/internal/i18n"
	"github.com/mmynk/kakeibo/internal/ledger"
)

type command func(ctx context.Context, args []string) error

var errSummaryUsage = errors.New("usage: summary [today|daily|monthly|balances]")

func (a *app) dispatch(ctx context.Context, args []string) error {
	commands := map[string]map[string]command{
		"signup":  {"": a.signup},
		"resend":  {"": a.resend},
		"verify":  {"": a.verify},
		"login":   {"": a.login},
		"logout":  {"": a.logout},
		"profile": {"": a.profile, "update": a.updateProfile},
		"account": {"delete": a.deleteAccount},
		"group": {
			"list":   a.listGroups,
			"create": a.createGroup,
			"rename": a.renameGroup,
			"select": a.selectGroup,
			"leave":  a.leaveGroup,
		},
		"invite": {
			"list":    a.listInvitations,
			"send":    a.invite,
			"accept":  a.accept,
			"decline": a.decline,
		},
		"tx": {
			"add":    a.addTransaction,
			"list":   a.listTransactions,
			"delete": a.deleteTransaction,
		},
		"summary": {"": a.summary},
		"lang":    {"": a.language},
	}

	subs, ok := commands[args[0]]
	if !ok {
		usage(a.stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	rest := args[1:]
	if len(rest) > 0 {
		if cmd, ok := subs[rest[0]]; ok && rest[0] != "" {
			return cmd(ctx, rest[1:])
		}
	}
	if cmd, ok := subs[""]; ok {
		return cmd(ctx, rest)
	}
	usage(a.stderr)
	return fmt.Errorf("%s: missing or unknown subcommand", args[0])
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// args parses the flags of a command and checks its positional arguments.
func (a *app) args(fs *flag.FlagSet, args []string, want ...string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != len(want) {
		return nil, fmt.Errorf("usage: %s %s", fs.Name(), strings.Join(want, " "))
	}
	return fs.Args(), nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := a.flags("signup")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "e-mail address")
	if _, err := a.args(fs, args); err != nil {
		return err
	}
	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}
	if err := a.ledger.Signup(ctx, *username, *email, password); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.VerificationSent)
}

func (a *app) resend(ctx context.Context, args []string) error {
	if _, err := a.args(a.flags("resend"), args); err != nil {
		return err
	}
	if err := a.ledger.ResendVerification(ctx); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.VerificationResent)
}

func (a *app) verify(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("verify"), args, "TOKEN")
	if err != nil {
		return err
	}
	if _, err := a.ledger.Verify(ctx, pos[0]); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.Verified)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.String("username", "", "username")
	if _, err := a.args(fs, args); err != nil {
		return err
	}
	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}
	user, err := a.ledger.Login(ctx, *username, password)
	if err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.LoggedIn, user.Username)
}

func (a *app) logout(ctx context.Context, args []string) error {
	if _, err := a.args(a.flags("logout"), args); err != nil {
		return err
	}
	if err := a.ledger.Logout(ctx); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.LoggedOut)
}

func (a *app) profile(ctx context.Context, args []string) error {
	if _, err := a.args(a.flags("profile"), args); err != nil {
		return err
	}
	user, err := a.ledger.Profile(ctx)
	if err != nil {
		return a.fail("", err)
	}
	fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", user.Username, user.Email, user.ID)
	return nil
}

func (a *app) updateProfile(ctx context.Context, args []string) error {
	fs := a.flags("profile update")
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new e-mail address")
	newPassword := fs.Bool("password", false, "prompt for a new password")
	if _, err := a.args(fs, args); err != nil {
		return err
	}
	update := ledger.ProfileUpdate{Username: *username, Email: *email}
	if *newPassword {
		pw, err := a.readPassword("New password: ")
		if err != nil {
			return err
		}
		update.Password = pw
	}
	if _, err := a.ledger.UpdateProfile(ctx, update); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.ProfileUpdated)
}

func (a *app) deleteAccount(ctx context.Context, args []string) error {
	fs := a.flags("account delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if _, err := a.args(fs, args); err != nil {
		return err
	}
	if !*yes {
		if _, err := a.ledger.CurrentUserID(ctx); err != nil {
			return a.fail(i18n.AccountDeleteFailed, err)
		}
		if !a.confirm(i18n.ConfirmDeleteAccount) {
			return a.ok(i18n.Cancelled)
		}
	}
	if err := a.ledger.DeleteAccount(ctx); err != nil {
		return a.fail(i18n.AccountDeleteFailed, err)
	}
	return a.ok(i18n.AccountDeleted)
}

func (a *app) listGroups(ctx context.Context, args []string) error {
	if _, err := a.args(a.flags("group list"), args); err != nil {
		return err
	}
	userID, err := a.ledger.CurrentUserID(ctx)
	if err != nil {
		return a.fail("", err)
	}
	selected, err := a.ledger.SelectedGroup(ctx)
	if err != nil {
		return a.fail("", err)
	}
	groups, err := a.ledger.Groups(ctx)
	if err != nil {
		return a.fail("", err)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		mark := " "
		if g.ID == selected.ID {
			mark = "*"
		}
		role := "member"
		if g.Owner == userID {
			role = "owner"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", mark, g.ID, g.Name, role, len(g.Members))
	}
	return tw.Flush()
}

func (a *app) createGroup(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("group create"), args, "NAME")
	if err != nil {
		return err
	}
	g, err := a.ledger.CreateGroup(ctx, pos[0])
	if err != nil {
		return a.fail(i18n.GroupCreateFailed, err)
	}
	fmt.Fprintln(a.stdout, g.ID)
	return a.ok(i18n.GroupCreated)
}

func (a *app) renameGroup(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("group rename"), args, "GROUP_ID", "NAME")
	if err != nil {
		return err
	}
	if _, err := a.ledger.RenameGroup(ctx, pos[0], pos[1]); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.GroupRenamed)
}

func (a *app) selectGroup(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("group select"), args, "GROUP_ID")
	if err != nil {
		return err
	}
	if err := a.ledger.SelectGroup(ctx, pos[0]); err != nil {
		return a.fail("", err)
	}
	return a.ok(i18n.GroupSwitched)
}

func (a *app) leaveGroup(ctx context.Context, args []string) error {
	fs := a.flags("group leave")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	pos, err := a.args(fs, args, "GROUP_ID")
	if err != nil {
		return err
	}
	groupID := pos[0]

	if !*yes {
		prompt, name, err := a.leavePrompt(ctx, groupID)
		if err != nil {
			return a.fail(i18n.GroupLeaveFailed, err)
		}
		if !a.confirm(prompt, name) {
			return a.ok(i18n.Cancelled)
		}
	}
	if err := a.ledger.LeaveGroup(ctx, groupID); err != nil {
		return a.fail(i18n.GroupLeaveFailed, err)
	}
	return a.ok(i18n.GroupLeft)
}

// leavePrompt picks the confirmation for leaving groupID: a sole owner is
// warned that the group will be deleted.
func (a *app) leavePrompt(ctx context.Context, groupID string) (string, string, error) {
	userID, err := a.ledger.CurrentUserID(ctx)
	if err != nil {
		return "", "", err
	}
	groups, err := a.ledger.Groups(ctx)
	if err != nil {
		return "", "", err
	}
	for _, g := range groups {
		if g.ID != groupID {
			continue
		}
		if g.IsPrivate() {
			return "", "", ledger.ErrLeavePrivateGroup
		}
		if g.Owner == userID && len(g.OtherMembers(userID)) == 0 {
			return i18n.ConfirmLeaveDelete, g.Name, nil
		}
		return i18n.ConfirmLeave, g.Name, nil
	}
	return "", "", ledger.ErrGroupNotFound
}

func (a *app) listInvitations(ctx context.Context, args []string) error {
	if _, err := a.args(a.flags("invite list"), args); err != nil {
		return err
	}
	invs, err := a.ledger.Invitations(ctx)
	if err != nil {
		return a.fail("", err)
	}
	if len(invs) == 0 {
		return a.ok(i18n.NoInvitations)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, inv := range invs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", inv.ID, inv.GroupName, inv.GroupID)
	}
	return tw.Flush()
}

func (a *app) invite(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("invite send"), args, "GROUP_ID", "EMAIL")
	if err != nil {
		return err
	}
	if _, err := a.ledger.Invite(ctx, pos[0], pos[1]); err != nil {
		return a.fail(i18n.InvitationFailed, err)
	}
	return a.ok(i18n.InvitationSent)
}

func (a *app) accept(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("invite accept"), args, "INVITATION_ID")
	if err != nil {
		return err
	}
	if _, err := a.ledger.Accept(ctx, pos[0]); err != nil {
		return a.fail(i18n.InvitationAcceptFail, err)
	}
	return a.ok(i18n.InvitationAccepted)
}

func (a *app) decline(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("invite decline"), args, "INVITATION_ID")
	if err != nil {
		return err
	}
	if err := a.ledger.Decline(ctx, pos[0]); err != nil {
		return a.fail(i18n.InvitationDeclineFail, err)
	}
	return a.ok(i18n.InvitationDeclined)
}

func (a *app) addTransaction(ctx context.Context, args []string) error {
	fs := a.flags("tx add")
	title := fs.String("title", "", "what the money was spent on")
	pos, err := a.args(fs, args, "AMOUNT")
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(pos[0], ",", ""))
	if err != nil {
		return a.fail(i18n.TransactionAddFailed, ledger.ErrInvalidAmount)
	}
	if _, err := a.ledger.AddTransaction(ctx, amount, *title); err != nil {
		return a.fail(i18n.TransactionAddFailed, err)
	}
	return a.ok(i18n.TransactionAdded)
}

func (a *app) listTransactions(ctx context.Context, args []string) error {
	fs := a.flags("tx list")
	cached := fs.Bool("cached", false, "show the cached list without refreshing")
	if _, err := a.args(fs, args); err != nil {
		return err
	}
	txs, err := a.ledger.Transactions(ctx, !*cached)
	if err != nil {
		return a.fail("", err)
	}
	if len(txs) == 0 {
		return a.ok(i18n.NoTransactions)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", tx.ID, tx.Date.Local().Format("2006-01-02 15:04"), a.money(tx.Amount), tx.Title)
	}
	return tw.Flush()
}

func (a *app) deleteTransaction(ctx context.Context, args []string) error {
	pos, err := a.args(a.flags("tx delete"), args, "TRANSACTION_ID")
	if err != nil {
		return err
	}
	if err := a.ledger.DeleteTransaction(ctx, pos[0]); err != nil {
		return a.fail(i18n.TransactionDelFailed, err)
	}
	return a.ok(i18n.TransactionDeleted)
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := a.flags("summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view := "today"
	switch fs.NArg() {
	case 0:
	case 1:
		view = fs.Arg(0)
	default:
		return errSummaryUsage
	}

	if view == "balances" {
		return a.balances(ctx)
	}
	s, err := a.ledger.Summary(ctx)
	if err != nil {
		return a.fail("", err)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	switch view {
	case "today":
		fmt.Fprintf(tw, "%s\t%s\t\n", a.p.Sprintf(i18n.Today), a.money(s.Today))
	case "daily":
		for _, t := range s.Daily {
			fmt.Fprintf(tw, "%s\t%s\t%d\t\n", t.Period, a.money(t.Amount), t.Count)
		}
	case "monthly":
		for _, t := range s.Monthly {
			fmt.Fprintf(tw, "%s\t%s\t%d\t\n", t.Period, a.money(t.Amount), t.Count)
		}
	default:
		return errSummaryUsage
	}
	return tw.Flush()
}

func (a *app) balances(ctx context.Context) error {
	balances, edges, err := a.ledger.Balances(ctx)
	if err != nil {
		return a.fail("", err)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t\t\t\t\n", a.p.Sprintf(i18n.Balances))
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", b.UserID, a.money(b.TotalPaid), a.money(b.FairShare), a.money(b.NetBalance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(edges) > 0 {
		fmt.Fprintln(a.stdout, a.p.Sprintf(i18n.Settlements))
		for _, e := range edges {
			fmt.Fprintln(a.stdout, a.p.Sprintf(i18n.Pays, e.From, e.To, a.money(e.Amount)))
		}
	}
	return nil
}

func (a *app) language(ctx context.Context, args []string) error {
	fs := a.flags("lang")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return a.ok(i18n.CurrentLanguage, a.ledger.Language(ctx))
	}
	if err := a.ledger.SetLanguage(ctx, fs.Arg(0)); err != nil {
		return a.fail("", err)
	}
	lang := a.ledger.Language(ctx)
	a.p = i18n.Printer(lang)
	return a.ok(i18n.LanguageSet, lang)
}

// money formats an amount with the grouping of the current language.
func (a *app) money(d decimal.Decimal) string {
	return a.p.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

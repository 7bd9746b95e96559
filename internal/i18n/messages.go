package i18n

// Message keys.
const (
	GroupCreated          = "Group created"
	GroupCreateFailed     = "Failed to create group"
	GroupRenamed          = "Group renamed"
	GroupSwitched         = "Switched group"
	GroupLeft             = "Left the group"
	GroupLeaveFailed      = "Failed to leave the group"
	InvitationSent        = "Invitation sent"
	InvitationFailed      = "Failed to send invitation"
	InvitationAccepted    = "Joined the group"
	InvitationAcceptFail  = "Failed to join the group"
	InvitationDeclined    = "Invitation declined"
	InvitationDeclineFail = "Failed to decline the invitation"
	AccountDeleted        = "Account deleted"
	AccountDeleteFailed   = "Failed to delete the account"
	TransactionAdded      = "Transaction added"
	TransactionAddFailed  = "Failed to add transaction"
	TransactionDeleted    = "Transaction deleted"
	TransactionDelFailed  = "Failed to delete transaction"
	VerificationSent      = "Verification email sent. Please check your inbox."
	VerificationResent    = "Verification email resent. Please check your inbox."
	Verified              = "Email address verified. You can now log in."
	LoggedIn              = "Logged in as %s"
	LoggedOut             = "Logged out"
	ProfileUpdated        = "Profile updated"
	LanguageSet           = "Language set to %s"
	Cancelled             = "Cancelled"
	ConfirmLeave          = "Leave %s? [y/N] "
	ConfirmLeaveDelete    = "You are the only member of %s. Leaving deletes it with all its transactions. Continue? [y/N] "
	ConfirmDeleteAccount  = "Delete your account, your private group and its transactions? [y/N] "
	CurrentLanguage       = "Language: %s"
	Balances              = "Balances"
	Settlements           = "Settlements"
	Pays                  = "%s pays %s %s"
	NoTransactions        = "No transactions"
	NoInvitations         = "No invitations"
	Today                 = "Today"

	ErrEmptyGroupName    = "Please enter a group name"
	ErrReservedGroupName = "A group with this name cannot be created"
	ErrEmptyUsername     = "Please enter a username"
	ErrInvalidEmail      = "Invalid email address"
	ErrWeakPassword      = "Password must be at least 8 characters"
	ErrInvalidAmount     = "Please enter an amount"
	ErrInvalidToken      = "Invalid token"
	ErrEmailMismatch     = "Email address does not match"
	ErrGroupNotFound     = "Group not found"
	ErrInvitationMissing = "Invitation not found"
	ErrTransactionGone   = "Transaction not found"
	ErrInviteeNotFound   = "No user exists with that email address"
	ErrUserNotFound      = "User information not found"
	ErrPrivateGroup      = "Private groups cannot be shared"
	ErrLeavePrivate      = "You cannot leave your private group"
	ErrRenamePrivate     = "The private group cannot be renamed"
	ErrNotMember         = "You are not a member of this group"
	ErrNotOwner          = "Only the owner can do that"
	ErrNotInvitee        = "This invitation is for another user"
	ErrNotSignedIn       = "Please log in"
	ErrBadCredentials    = "Incorrect username or password"
	ErrUnverified        = "Email address not verified"
	ErrAlreadyMember     = "Already a member of this group"
	ErrEmailTaken        = "This email address is already registered"
	ErrUsernameTaken     = "This username is already taken"
	ErrMailFailed        = "Failed to send the verification email"
	ErrNoPendingSignup   = "No signup is waiting for verification"
	ErrUnsupportedLang   = "Unsupported language"
	ErrGeneric           = "Something went wrong. Please try again."
)

var japanese = map[string]string{
	GroupCreated:          "グループを作成しました",
	GroupCreateFailed:     "グループの作成に失敗しました",
	GroupRenamed:          "グループ名を変更しました",
	GroupSwitched:         "グループを切り替えました",
	GroupLeft:             "グループから退出しました",
	GroupLeaveFailed:      "グループの退出に失敗しました",
	InvitationSent:        "招待を送信しました",
	InvitationFailed:      "招待に失敗しました",
	InvitationAccepted:    "グループに参加しました",
	InvitationAcceptFail:  "参加に失敗しました",
	InvitationDeclined:    "招待を辞退しました",
	InvitationDeclineFail: "辞退に失敗しました",
	AccountDeleted:        "アカウントを削除しました",
	AccountDeleteFailed:   "アカウントの削除に失敗しました",
	TransactionAdded:      "追加しました",
	TransactionAddFailed:  "追加に失敗しました",
	TransactionDeleted:    "トランザクションが正常に削除されました。",
	TransactionDelFailed:  "トランザクションの削除に失敗しました。",
	VerificationSent:      "確認メールを送信しました。メールを確認してください。",
	VerificationResent:    "確認メールを再送信しました。メールを確認してください。",
	Verified:              "メールアドレスが確認され、登録が完了しました",
	LoggedIn:              "%s としてログインしました",
	LoggedOut:             "ログアウトしました",
	ProfileUpdated:        "プロフィールを更新しました",
	LanguageSet:           "言語を %s に設定しました",
	Cancelled:             "キャンセルしました",
	ConfirmLeave:          "%s から退出しますか？ [y/N] ",
	ConfirmLeaveDelete:    "%s のメンバーはあなただけです。退出するとグループとすべての取引が削除されます。続けますか？ [y/N] ",
	ConfirmDeleteAccount:  "アカウント、プライベートグループとその取引を削除しますか？ [y/N] ",
	CurrentLanguage:       "言語: %s",
	Balances:              "残高",
	Settlements:           "精算",
	Pays:                  "%s が %s に %s 支払う",
	NoTransactions:        "取引はありません",
	NoInvitations:         "招待はありません",
	Today:                 "今日",

	ErrEmptyGroupName:    "グループ名を入力してください",
	ErrReservedGroupName: "この名前のグループは作成できません",
	ErrEmptyUsername:     "ユーザー名を入力してください",
	ErrInvalidEmail:      "メールアドレスの形式が正しくありません",
	ErrWeakPassword:      "パスワードは8文字以上で入力してください",
	ErrInvalidAmount:     "金額を入力してください",
	ErrInvalidToken:      "無効なトークンです",
	ErrEmailMismatch:     "メールアドレスが一致しません",
	ErrGroupNotFound:     "グループが見つかりませんでした。",
	ErrInvitationMissing: "招待が見つかりませんでした",
	ErrTransactionGone:   "取引が見つかりませんでした",
	ErrInviteeNotFound:   "指定されたメールアドレスのユーザーが存在しません",
	ErrUserNotFound:      "ユーザー情報が見つかりません",
	ErrPrivateGroup:      "プライベートグループには招待できません",
	ErrLeavePrivate:      "プライベートグループからは退出できません",
	ErrRenamePrivate:     "プライベートグループの名前は変更できません",
	ErrNotMember:         "このグループのメンバーではありません",
	ErrNotOwner:          "オーナーのみ実行できます",
	ErrNotInvitee:        "この招待は他のユーザー宛てです",
	ErrNotSignedIn:       "ログインしてください",
	ErrBadCredentials:    "ユーザー名またはパスワードが正しくありません",
	ErrUnverified:        "メールアドレスが確認されていません",
	ErrAlreadyMember:     "すでにグループのメンバーです",
	ErrEmailTaken:        "このメールアドレスは既に登録されています",
	ErrUsernameTaken:     "このユーザー名は既に使用されています",
	ErrMailFailed:        "メールの送信に失敗しました",
	ErrNoPendingSignup:   "ユーザー情報が見つかりません",
	ErrUnsupportedLang:   "対応していない言語です",
	ErrGeneric:           "エラーが発生しました。もう一度お試しください。",
}

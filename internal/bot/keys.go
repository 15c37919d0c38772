package bot

// Callback keys. The payload follows the key after "|".
const (
	keyMain     = "main"
	keyRegister = "user_register"
	keyProfile  = "user_profile"

	keyCatOpen   = "cat_open"   // <cat>
	keyCatList   = "cat_list"   // <cat>|<page|recent>
	keyCatUpload = "cat_upload" // <cat>

	keyItemView    = "item_view"    // <id>
	keyItemGet     = "item_get"     // <id>
	keyItemEdit    = "item_edit"    // <id>
	keyEditName    = "edit_name"    // <id>
	keyEditCaption = "edit_caption" // <id>
	keyItemDel     = "item_del"     // <id>

	keyTrashList       = "trash_list"    // <page>
	keyTrashRestore    = "trash_restore" // <id>
	keyTrashPurge      = "trash_purge"   // <id>
	keyTrashPurgeAll   = "trash_purge_all"
	keyTrashPurgeAllDo = "trash_purge_all_do"

	keySearchOpen = "search_open"
	keySearchCat  = "search_cat" // <cat>

	keyAdminOpen     = "admin_open"
	keyAdminUsers    = "admin_users"      // <page>
	keyAdminToggle   = "admin_toggle_mod" // <uid>|<page>
	keyAdminStats    = "admin_stats"
	keyAdminSettings = "admin_settings"

	keyFlowCancel = "flow_cancel"
)

const pageRecent = "recent"

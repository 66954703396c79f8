package common

// UnsortedFolder is the folder newly imported inventory items land in.
const UnsortedFolder = "Unsorted"

// UncategorizedFolder is the folder an item is returned to when its
// reservation is removed or its deck instance is released.
const UncategorizedFolder = "Uncategorized"

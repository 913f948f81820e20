// Package testutil provides shared test doubles for the prune driver.
package testutil

// StoreCall records one mutating call issued to a FakeSession.
type StoreCall struct {
	UIDSet string
	Item   string
	Value  string
}

// FakeSession implements base.Session for tests. Behavior is injected
// through function fields; every call is recorded for verification.
type FakeSession struct {
	LoginFunc        func(username, password string) error
	ListFunc         func() ([]string, error)
	SelectFunc       func(name string) error
	SearchBeforeFunc func(date string) ([]string, error)
	StoreFunc        func(uidSet, item, value string) error
	ExpungeFunc      func() error
	LogoutFunc       func() error

	Selected     string
	LoginCalls   int
	ListCalls    int
	SelectCalls  []string
	SearchCalls  []string
	StoreCalls   []StoreCall
	ExpungeCalls int
	LogoutCalls  int
}

func (f *FakeSession) Login(username, password string) error {
	f.LoginCalls++
	if f.LoginFunc != nil {
		return f.LoginFunc(username, password)
	}
	return nil
}

func (f *FakeSession) List() ([]string, error) {
	f.ListCalls++
	if f.ListFunc != nil {
		return f.ListFunc()
	}
	return nil, nil
}

func (f *FakeSession) Select(name string) error {
	f.SelectCalls = append(f.SelectCalls, name)
	if f.SelectFunc != nil {
		if err := f.SelectFunc(name); err != nil {
			return err
		}
	}
	f.Selected = name
	return nil
}

func (f *FakeSession) Mailbox() string {
	return f.Selected
}

func (f *FakeSession) SearchBefore(date string) ([]string, error) {
	f.SearchCalls = append(f.SearchCalls, date)
	if f.SearchBeforeFunc != nil {
		return f.SearchBeforeFunc(date)
	}
	return nil, nil
}

func (f *FakeSession) Store(uidSet, item, value string) error {
	f.StoreCalls = append(f.StoreCalls, StoreCall{UIDSet: uidSet, Item: item, Value: value})
	if f.StoreFunc != nil {
		return f.StoreFunc(uidSet, item, value)
	}
	return nil
}

func (f *FakeSession) Expunge() error {
	f.ExpungeCalls++
	if f.ExpungeFunc != nil {
		return f.ExpungeFunc()
	}
	return nil
}

func (f *FakeSession) Logout() error {
	f.LogoutCalls++
	if f.LogoutFunc != nil {
		return f.LogoutFunc()
	}
	return nil
}
